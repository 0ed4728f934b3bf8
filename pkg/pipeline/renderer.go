package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Event is a lifecycle event of a render pass.
type Event string

// Render pass events, in the order a pass emits them.
const (
	EventStarted   Event = "started"
	EventDataReady Event = "data-ready"
	EventDone      Event = "done"
)

// Pass describes one render pass. Result is set from EventDataReady on;
// Err is set only with EventDone.
type Pass struct {
	ID     string
	Result *Result
	Err    error
}

// Listener receives pass events on the rendering goroutine. A listener may
// call [Renderer.Submit] and [Renderer.Render]; the nested Render only
// queues a redraw.
type Listener func(Event, Pass)

// Renderer serializes render passes over a [Runner].
//
// [Renderer.Submit] stores the latest request. [Renderer.Render] runs a pass
// with it; when called while a pass is in flight it only marks a redraw as
// pending and returns. The in-flight pass then runs exactly one more pass
// with whatever request was stored last, however many calls arrived.
type Renderer struct {
	runner   *Runner
	logger   *log.Logger
	listener Listener

	mu            sync.Mutex
	request       *Options
	running       bool
	redrawPending bool

	latest atomic.Pointer[Result]
	passes atomic.Int64
}

// RendererOption configures a [Renderer].
type RendererOption func(*Renderer)

// WithListener registers a pass event listener.
func WithListener(l Listener) RendererOption { return func(r *Renderer) { r.listener = l } }

// WithLogger sets the renderer logger.
func WithLogger(l *log.Logger) RendererOption { return func(r *Renderer) { r.logger = l } }

// NewRenderer creates a renderer over runner.
func NewRenderer(runner *Runner, opts ...RendererOption) *Renderer {
	r := &Renderer{runner: runner}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = runner.Logger
	}
	return r
}

// Submit stores opts as the request for the next pass. Earlier requests
// not yet rendered are dropped.
func (r *Renderer) Submit(opts Options) {
	r.mu.Lock()
	r.request = &opts
	r.mu.Unlock()
}

// Render runs passes until no redraw is pending. If a pass is already in
// progress, Render records the redraw and returns nil immediately. The
// returned error is that of the last pass run by this call.
func (r *Renderer) Render(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.redrawPending = true
		r.mu.Unlock()
		r.logger.Debug("render in progress, redraw queued")
		return nil
	}
	r.running = true
	r.mu.Unlock()

	for {
		r.mu.Lock()
		req := r.request
		r.redrawPending = false
		r.mu.Unlock()

		var err error
		if req != nil {
			err = r.pass(ctx, *req)
		}

		r.mu.Lock()
		if !r.redrawPending || ctx.Err() != nil {
			r.running = false
			r.redrawPending = false
			r.mu.Unlock()
			return err
		}
		r.mu.Unlock()
	}
}

// Update submits opts and renders.
func (r *Renderer) Update(ctx context.Context, opts Options) error {
	r.Submit(opts)
	return r.Render(ctx)
}

// Latest returns the result of the last successful pass, or nil. The
// result is published only after the pass completes.
func (r *Renderer) Latest() *Result {
	return r.latest.Load()
}

// Passes returns the number of passes run.
func (r *Renderer) Passes() int64 {
	return r.passes.Load()
}

func (r *Renderer) pass(ctx context.Context, opts Options) error {
	id := uuid.NewString()
	r.passes.Add(1)
	r.emit(EventStarted, Pass{ID: id})

	res, err := r.runner.execute(ctx, id, opts, func(partial *Result) {
		r.emit(EventDataReady, Pass{ID: id, Result: partial})
	})
	if err != nil {
		r.logger.Error("render failed", "pass", id, "error", err)
		r.emit(EventDone, Pass{ID: id, Err: err})
		return err
	}
	r.latest.Store(res)
	r.emit(EventDone, Pass{ID: id, Result: res})
	return nil
}

func (r *Renderer) emit(ev Event, p Pass) {
	if r.listener != nil {
		r.listener(ev, p)
	}
}
