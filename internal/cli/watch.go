package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	spanio "github.com/matzehuels/spantower/pkg/io"
	"github.com/matzehuels/spantower/pkg/pipeline"
	"github.com/matzehuels/spantower/pkg/render/spans/diff"
	"github.com/matzehuels/spantower/pkg/render/spans/layout"
)

// watchDebounce coalesces bursts of file events, such as an editor
// writing a temp file and renaming it.
const watchDebounce = 200 * time.Millisecond

// watchCommand creates the watch command, which re-renders on file changes.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags  sessionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "watch [doc.json]",
		Short: "Re-render whenever the document or configuration changes",
		Long: `Re-render whenever the document or configuration changes.

The document, --config and --collection files are watched. Each change
starts a new layout pass; changes arriving during a pass are folded into
a single follow-up pass. After every pass the geometric difference to the
previous layout is logged and the model is written to the output file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd, &flags, args[0], output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")

	return cmd
}

func (c *CLI) runWatch(cmd *cobra.Command, flags *sessionFlags, path, output string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	if output == "" {
		output = defaultOutput(path, modelSuffix)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range flags.watched(path) {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	// Directories are watched so that files replaced by rename keep firing.
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	renderer := pipeline.NewRenderer(runner,
		pipeline.WithLogger(logger),
		pipeline.WithListener(watchListener(logger, output)),
	)

	changes := make(chan struct{}, 1)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !files[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logger.Debug("file changed", "file", ev.Name, "op", ev.Op)
				notify(changes)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watcher error", "error", err)
			}
		}
	})

	g.Go(func() error {
		render := func() {
			sess, err := flags.session()
			if err != nil {
				logger.Error("load session", "error", err)
				return
			}
			// Pass errors are logged by the renderer and the listener.
			_ = renderer.Update(gctx, flags.options(cmd, path, sess))
		}
		render()
		for range debounce(gctx, changes, watchDebounce) {
			render()
		}
		return nil
	})

	logger.Info("watching", "files", len(files), "output", output)
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// watchListener logs each finished pass and writes its model.
func watchListener(logger *log.Logger, output string) pipeline.Listener {
	var prev *layout.Model
	return func(ev pipeline.Event, p pipeline.Pass) {
		if ev != pipeline.EventDone || p.Err != nil {
			return
		}
		res := p.Result
		changes := diff.Compare(prev, res.Model)
		prev = res.Model
		if err := spanio.WriteModelFile(output, res.Model); err != nil {
			logger.Error("write model", "file", output, "error", err)
			return
		}
		logger.Info("rendered",
			"pass", p.ID[:8],
			"rows", res.Stats.Rows,
			"messages", len(res.Messages),
			"cached", res.CacheInfo.LayoutHit,
			"changes", changes.String(),
		)
	}
}

// notify signals ch without blocking. A signal already pending absorbs it.
func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// debounce forwards a signal once in has been quiet for delay. The
// returned channel is closed when ctx is done.
func debounce(ctx context.Context, in <-chan struct{}, delay time.Duration) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		timer := time.NewTimer(delay)
		timer.Stop()
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-in:
				timer.Reset(delay)
			case <-timer.C:
				notify(out)
			}
		}
	}()
	return out
}
