package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/spantower/pkg/collection"
	"github.com/matzehuels/spantower/pkg/config"
	"github.com/matzehuels/spantower/pkg/fonts"
)

func TestNew(t *testing.T) {
	s, err := New(nil, config.Default(), fonts.KindFixed)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if s.ID == "" {
		t.Error("ID is empty")
	}
	if s.Collection == nil || s.Collection.Name != "default" {
		t.Errorf("Collection = %+v, want default", s.Collection)
	}
	if s.Fonts.Text == nil || s.Fonts.Text.Width("ab") != 14 {
		t.Error("fixed measurers not opened")
	}

	bad := config.Default()
	bad.CanvasWidth = 0
	if _, err := New(nil, bad, fonts.KindFixed); err == nil {
		t.Error("New() with invalid config should fail")
	}
	if _, err := New(nil, config.Default(), "comic.otf"); err == nil {
		t.Error("New() with unknown font should fail")
	}
}

func TestWithConfig(t *testing.T) {
	s := Default()
	cfg := config.Default()
	cfg.CanvasWidth = 1200

	next, err := s.WithConfig(cfg)
	if err != nil {
		t.Fatalf("WithConfig() error: %v", err)
	}
	if next.Config.CanvasWidth != 1200 {
		t.Errorf("next CanvasWidth = %v, want 1200", next.Config.CanvasWidth)
	}
	if s.Config.CanvasWidth != config.DefaultCanvasWidth {
		t.Errorf("original CanvasWidth = %v, want %v", s.Config.CanvasWidth, config.DefaultCanvasWidth)
	}
	if next.ID != s.ID {
		t.Errorf("ID changed: %s -> %s", s.ID, next.ID)
	}

	coll := &collection.Collection{Name: "news"}
	withColl, err := s.WithCollection(coll)
	if err != nil {
		t.Fatalf("WithCollection() error: %v", err)
	}
	if withColl.Collection != coll || s.Collection == coll {
		t.Error("WithCollection should replace the collection on the copy only")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := Default()

	if got, err := store.Get(ctx, s.ID); got != nil || err != nil {
		t.Fatalf("Get(missing) = %v, %v, want nil, nil", got, err)
	}
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if got, _ := store.Get(ctx, s.ID); got != s {
		t.Errorf("Get() = %v, want stored session", got)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, _ := store.Get(ctx, s.ID); got != nil {
		t.Error("session still present after Delete")
	}
	if err := store.Put(ctx, &Session{}); err != ErrInvalidID {
		t.Errorf("Put(no id) = %v, want ErrInvalidID", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	cfg := config.Default()
	cfg.CanvasWidth = 640
	s, err := New(nil, cfg, fonts.KindFixed)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, s.ID+".json")); err != nil {
		t.Fatalf("session file missing: %v", err)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Config.CanvasWidth != 640 {
		t.Errorf("CanvasWidth = %v, want 640", got.Config.CanvasWidth)
	}
	if got.Fonts.Text == nil {
		t.Error("measurers not rebuilt on load")
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, err := store.Get(ctx, s.ID); got != nil || err != nil {
		t.Errorf("Get(deleted) = %v, %v, want nil, nil", got, err)
	}
	if _, err := store.Get(ctx, "../escape"); err != ErrInvalidID {
		t.Errorf("Get(../escape) = %v, want ErrInvalidID", err)
	}
}
