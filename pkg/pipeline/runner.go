package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/spantower/pkg/annotation"
	"github.com/matzehuels/spantower/pkg/cache"
	"github.com/matzehuels/spantower/pkg/errors"
	spanio "github.com/matzehuels/spantower/pkg/io"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/observability"
	"github.com/matzehuels/spantower/pkg/render/spans/layout"
	"github.com/matzehuels/spantower/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedLayout is the cache entry of a layout model and its messages.
type cachedLayout struct {
	Model    json.RawMessage    `json:"model"`
	Messages []messages.Message `json:"messages,omitempty"`
}

// Execute runs the complete decode → build → layout pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	return r.execute(ctx, uuid.NewString(), opts, nil)
}

// execute runs one pass. dataReady, if non-nil, is called once the
// annotation graph (or the cached model) is available.
func (r *Runner) execute(ctx context.Context, passID string, opts Options, dataReady func(*Result)) (res *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	start := time.Now()
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, passID)
	defer func() {
		rows := 0
		if res != nil && res.Model != nil {
			rows = len(res.Model.Rows)
		}
		hooks.OnRenderComplete(ctx, passID, rows, time.Since(start), err)
	}()

	data, err := r.Load(opts)
	if err != nil {
		return nil, err
	}
	res = &Result{PassID: passID, DocumentHash: cache.Hash(data)}

	model, msgs, hit, err := r.LayoutWithCacheInfo(ctx, data, opts, func(doc *annotation.Document, buildTime time.Duration) {
		res.Document = doc
		res.Stats.BuildTime = buildTime
		hooks.OnDataReady(ctx, passID, len(doc.SortedSpans), len(doc.Arcs), len(doc.Chunks))
		if dataReady != nil {
			dataReady(res)
		}
	})
	if err != nil {
		return nil, err
	}
	if hit {
		st := statsFor(model)
		hooks.OnDataReady(ctx, passID, st.Spans, st.Arcs, st.Chunks)
		if dataReady != nil {
			dataReady(res)
		}
	}
	for _, m := range msgs {
		hooks.OnMessage(ctx, passID, m)
	}

	buildTime := res.Stats.BuildTime
	res.Model = model
	res.Messages = msgs
	res.Stats = statsFor(model)
	res.Stats.BuildTime = buildTime
	res.Stats.LayoutTime = time.Since(start) - buildTime
	res.CacheInfo.LayoutHit = hit

	opts.Logger.Info("laid out document",
		"pass", passID,
		"rows", res.Stats.Rows,
		"spans", res.Stats.Spans,
		"arcs", res.Stats.Arcs,
		"messages", len(msgs),
		"cached", hit,
		"duration", time.Since(start))
	return res, nil
}

// Load returns the raw payload of opts: Document if set, else the file at
// Path.
func (r *Runner) Load(opts Options) ([]byte, error) {
	if len(opts.Document) > 0 {
		return opts.Document, nil
	}
	if err := errors.ValidatePath(opts.Path, false); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s", opts.Path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", opts.Path)
	}
	return data, nil
}

// Decode parses and prepares a payload.
func (r *Runner) Decode(data []byte) (*source.Document, error) {
	src, err := spanio.ReadDocument(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	src.Prepare()
	return src, nil
}

// Build constructs the annotation graph with the session collection.
// Messages go to sink and, at debug level, to the logger.
func (r *Runner) Build(src *source.Document, opts Options, sink messages.Sink) *annotation.Document {
	opts.SetDefaults()
	r.applyLogger(&opts)
	return annotation.Build(src, opts.Session.Collection, messages.Tee(sink, r.logSink(opts.Logger)))
}

// Layout orders and lays out doc with the session configuration and fonts.
func (r *Runner) Layout(ctx context.Context, doc *annotation.Document, opts Options, sink messages.Sink) (*layout.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	r.applyLogger(&opts)
	sess := opts.Session
	return layout.Build(doc, opts.Config(),
		layout.WithCollection(sess.Collection),
		layout.WithFonts(sess.Fonts),
		layout.WithSink(messages.Tee(sink, r.logSink(opts.Logger))),
	), nil
}

// LayoutWithCacheInfo returns the model of a payload, from the cache when
// possible. built is called after a fresh build with the annotation graph;
// it is not called on a cache hit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, data []byte, opts Options, built func(*annotation.Document, time.Duration)) (*layout.Model, []messages.Message, bool, error) {
	opts.SetDefaults()
	r.applyLogger(&opts)
	key := r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if m, msgs, ok := r.cached(ctx, key); ok {
			opts.Logger.Debug("layout cache hit", "key", key)
			return m, msgs, true, nil
		}
	}

	buildStart := time.Now()
	src, err := r.Decode(data)
	if err != nil {
		return nil, nil, false, err
	}
	var c messages.Collector
	doc := r.Build(src, opts, &c)
	if built != nil {
		built(doc, time.Since(buildStart))
	}

	model, err := r.Layout(ctx, doc, opts, &c)
	if err != nil {
		return nil, nil, false, fmt.Errorf("layout: %w", err)
	}
	msgs := c.Messages()

	if entry, err := r.encode(model, msgs); err == nil {
		if err := r.Cache.Set(ctx, key, entry, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		}
	}
	return model, msgs, false, nil
}

func (r *Runner) cached(ctx context.Context, key string) (*layout.Model, []messages.Message, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, nil, false
	}
	var entry cachedLayout
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, nil, false
	}
	m, err := spanio.UnmarshalModel(entry.Model)
	if err != nil {
		return nil, nil, false
	}
	return m, entry.Messages, true
}

func (r *Runner) encode(m *layout.Model, msgs []messages.Message) ([]byte, error) {
	data, err := spanio.MarshalModel(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedLayout{Model: data, Messages: msgs})
}

// logSink logs every message at debug level.
func (r *Runner) logSink(logger *log.Logger) messages.Sink {
	return messages.SinkFunc(func(m messages.Message) {
		logger.Debug(m.Text, "severity", m.Severity, "code", m.Code)
	})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
