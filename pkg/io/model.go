package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/spantower/pkg/render/spans/layout"
)

// WriteModel encodes m as indented JSON and writes it to w.
func WriteModel(w io.Writer, m *layout.Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteModelFile writes m to a JSON file at path.
func WriteModelFile(path string, m *layout.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteModel(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MarshalModel returns the compact JSON form of m.
func MarshalModel(m *layout.Model) ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalModel parses data produced by [MarshalModel].
func UnmarshalModel(data []byte) (*layout.Model, error) {
	var m layout.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &m, nil
}
