// Package pipeline runs the decode → build → layout pipeline.
//
// The CLI, the server and the watcher all go through this package, so that
// caching, logging, message handling and observability behave the same for
// every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: parse the JSON payload and prepare it (tokens, sentences)
//  2. Build: construct the annotation graph; data problems become messages
//  3. Layout: order spans and compute the layout model
//
// [Runner] executes the stages with a content-addressed layout cache.
// [Renderer] sits on top of a runner and guarantees that layout passes never
// overlap: a request arriving during a pass is remembered and served by
// exactly one follow-up pass.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "doc.json",
//	    Session: sess,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, m := range result.Messages {
//	    fmt.Println(m)
//	}
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/cache"
	"github.com/matzehuels/spantower/pkg/config"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/render/spans/layout"
	"github.com/matzehuels/spantower/pkg/session"
)

// MaxWidth bounds the canvas width override.
const MaxWidth = 100000.0

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Path is the document file. Ignored when Document is set.
	Path string `json:"path,omitempty"`
	// Document is the raw JSON payload.
	Document []byte `json:"-"`

	// Width overrides the configured canvas width when non-zero.
	Width float64 `json:"width,omitempty"`
	// Abbrevs overrides label abbreviation when non-nil.
	Abbrevs *bool `json:"abbrevs,omitempty"`
	// TextBackgrounds overrides the background mode when non-empty.
	TextBackgrounds string `json:"text_backgrounds,omitempty"`
	// Refresh skips cache reads; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Session *session.Session `json:"-"`
	Logger  *log.Logger      `json:"-"`

	validated bool
}

// Validate checks field ranges.
func (o *Options) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Path, validation.When(len(o.Document) == 0, validation.Required.Error("path or document is required"))),
		validation.Field(&o.Width, validation.Min(0.0), validation.Max(MaxWidth)),
		validation.Field(&o.TextBackgrounds, validation.In(config.BackgroundsStriped, config.BackgroundsPlain)),
	)
}

// SetDefaults fills the session and logger.
func (o *Options) SetDefaults() {
	if o.Session == nil {
		o.Session = session.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateAndSetDefaults validates the options and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Validate(); err != nil {
		return err
	}
	o.SetDefaults()
	o.validated = true
	return nil
}

// Config returns the session configuration with the overrides applied.
func (o *Options) Config() config.Config {
	cfg := config.Default()
	if o.Session != nil {
		cfg = o.Session.Config
	}
	if o.Width > 0 {
		cfg.CanvasWidth = o.Width
	}
	if o.Abbrevs != nil {
		cfg.Abbrevs = *o.Abbrevs
	}
	if o.TextBackgrounds != "" {
		cfg.TextBackgrounds = o.TextBackgrounds
	}
	return cfg
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	cfg := o.Config()
	k := cache.LayoutKeyOpts{
		Config:  hashJSON(cfg),
		Width:   cfg.CanvasWidth,
		Abbrevs: cfg.Abbrevs,
	}
	if o.Session != nil {
		k.Collection = hashJSON(o.Session.Collection)
		k.Font = o.Session.Font
	}
	return k
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// PassID identifies the run in logs and hooks.
	PassID string

	// Document is the annotation graph. It is nil when the model came from
	// the cache.
	Document *annotation.Document

	// DocumentHash is the content hash of the payload.
	DocumentHash string

	// Model is the layout model.
	Model *layout.Model

	// Messages holds everything posted during build and layout.
	Messages []messages.Message

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Spans      int
	Arcs       int
	Chunks     int
	Rows       int
	BuildTime  time.Duration
	LayoutTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout model came from cache
}

// statsFor counts the elements of m.
func statsFor(m *layout.Model) Stats {
	arcs := make(map[string]bool)
	for _, l := range m.Lines() {
		arcs[l.Arc] = true
	}
	s := Stats{
		Spans: len(m.Spans),
		Arcs:  len(arcs),
		Rows:  len(m.Rows),
	}
	for _, r := range m.Rows {
		s.Chunks += len(r.Chunks)
	}
	return s
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("unhashable:%T", v)
	}
	return cache.Hash(data)
}
