package pipeline

import (
	"context"
	"testing"
)

func TestRendererSinglePass(t *testing.T) {
	var events []Event
	r := NewRenderer(NewRunner(nil, nil, nil), WithListener(func(ev Event, p Pass) {
		events = append(events, ev)
	}))

	if r.Latest() != nil {
		t.Fatal("Latest() before any pass should be nil")
	}
	if err := r.Update(context.Background(), Options{Document: []byte(giveJSON)}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	want := []Event{EventStarted, EventDataReady, EventDone}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, events[i], want[i])
		}
	}
	if r.Latest() == nil || r.Latest().Model == nil {
		t.Error("Latest() should hold the model after a pass")
	}
}

func TestRendererReentrant(t *testing.T) {
	ctx := context.Background()
	var r *Renderer
	nested := 0
	r = NewRenderer(NewRunner(nil, nil, nil), WithListener(func(ev Event, p Pass) {
		if ev != EventStarted || r.Passes() != 1 {
			return
		}
		if r.Latest() != nil {
			t.Error("model published before the first pass completed")
		}
		// Three requests arrive while the first pass runs.
		for _, w := range []float64{900, 1000, 1100} {
			r.Submit(Options{Document: []byte(giveJSON), Width: w})
			if err := r.Render(ctx); err != nil {
				t.Errorf("nested Render() error: %v", err)
			}
			nested++
		}
	}))

	if err := r.Update(ctx, Options{Document: []byte(giveJSON)}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if nested != 3 {
		t.Fatalf("nested renders = %d, want 3", nested)
	}
	if got := r.Passes(); got != 2 {
		t.Errorf("Passes() = %d, want 2", got)
	}
	if got := r.Latest().Model.CanvasWidth; got != 1100 {
		t.Errorf("latest CanvasWidth = %v, want 1100", got)
	}
}

func TestRendererError(t *testing.T) {
	var done Pass
	r := NewRenderer(NewRunner(nil, nil, nil), WithListener(func(ev Event, p Pass) {
		if ev == EventDone {
			done = p
		}
	}))
	err := r.Update(context.Background(), Options{Document: []byte("[")})
	if err == nil {
		t.Fatal("Update() with bad payload should fail")
	}
	if done.Err == nil || done.ID == "" {
		t.Errorf("done pass = %+v, want error and id", done)
	}
	if r.Latest() != nil {
		t.Error("failed pass must not publish a result")
	}
}

func TestRendererCancelDropsRedraw(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var r *Renderer
	r = NewRenderer(NewRunner(nil, nil, nil), WithListener(func(ev Event, p Pass) {
		if ev != EventStarted || r.Passes() != 1 {
			return
		}
		if err := r.Render(ctx); err != nil {
			t.Errorf("nested Render() error: %v", err)
		}
		cancel()
	}))

	r.Submit(Options{Document: []byte(giveJSON)})
	_ = r.Render(ctx)
	if got := r.Passes(); got != 1 {
		t.Errorf("Passes() after cancel = %d, want 1", got)
	}
	r.mu.Lock()
	pending, running := r.redrawPending, r.running
	r.mu.Unlock()
	if pending || running {
		t.Errorf("state after cancel = pending %v, running %v, want false, false", pending, running)
	}

	if err := r.Render(context.Background()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got := r.Passes(); got != 2 {
		t.Errorf("Passes() = %d, want 2", got)
	}
	if r.Latest() == nil {
		t.Error("fresh Render should publish a result")
	}
}
