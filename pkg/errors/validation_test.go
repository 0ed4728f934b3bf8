package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"entity id", "T1", false},
		{"equiv id", "*0*1", false},
		{"unicode", "Tä1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 300), true},
		{"null byte", "T\x001", true},
		{"newline", "T\n1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOffsets(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		wantErr  bool
	}{
		{"whole text", 0, 10, false},
		{"empty interval", 3, 3, false},
		{"negative from", -1, 4, true},
		{"reversed", 5, 4, true},
		{"past end", 2, 11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOffsets(tt.from, tt.to, 10)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateOffsets(%d, %d) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeOffsetRange) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeOffsetRange)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		relative bool
		wantErr  bool
	}{
		{"simple file", "doc.json", true, false},
		{"nested", "corpus/doc.json", true, false},
		{"absolute allowed", "/tmp/doc.json", false, false},

		{"empty", "", false, true},
		{"too long", strings.Repeat("a", 600), false, true},
		{"null byte", "doc\x00.json", false, true},
		{"absolute when relative", "/etc/passwd", true, true},
		{"traversal", "../secret", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input, tt.relative)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"default", false},
		{"genia-2024_b", false},
		{"", true},
		{"a/b", true},
		{"with space", true},
		{strings.Repeat("s", 65), true},
	}

	for _, tt := range tests {
		if err := ValidateSessionName(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateSessionName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
