// Package cli implements the spantower command-line interface.
//
// The commands lay out annotated documents, inspect and browse the
// resulting models, re-render on file changes, serve layouts over HTTP and
// export the annotation graph as DOT. The CLI is built using cobra and logs
// with charmbracelet/log.
//
// # Commands
//
//   - layout: Compute the layout model of a document and write it as JSON
//   - inspect: Print rows, spans and arcs of a layout as tables
//   - browse: Interactive row browser
//   - watch: Re-render whenever the document or configuration changes
//   - serve: HTTP layout server
//   - dot: Export the annotation graph as DOT or SVG
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// shows every data message as it is produced. The logger is attached to the
// command context and retrieved with loggerFromContext.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spantower/pkg/buildinfo"
	"github.com/matzehuels/spantower/pkg/cache"
	"github.com/matzehuels/spantower/pkg/collection"
	"github.com/matzehuels/spantower/pkg/config"
	"github.com/matzehuels/spantower/pkg/fonts"
	"github.com/matzehuels/spantower/pkg/pipeline"
	"github.com/matzehuels/spantower/pkg/session"
)

const (
	// appName is the application name used for directories and display.
	appName = "spantower"

	// envPrefix prefixes every environment variable read by the CLI.
	envPrefix = "SPANTOWER_"
)

// Cache backends selectable with SPANTOWER_CACHE.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheMongo = "mongo"
	cacheNone  = "none"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Spantower lays out annotated text",
		Long:         `Spantower computes the layout of annotated documents: text rows, stacked span boxes and the arcs between them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// newCache selects the backend named by SPANTOWER_CACHE (file by default).
func newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	kind := strings.ToLower(env("CACHE", cacheFile))
	if noCache {
		kind = cacheNone
	}
	switch kind {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     env("REDIS_ADDR", "localhost:6379"),
			Password: env("REDIS_PASSWORD", ""),
			Prefix:   appName + ":",
		})
		if err != nil {
			return nil, err
		}
		return cache.Observe(rc), nil
	case cacheMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{URI: env("MONGO_URI", "mongodb://localhost:27017")})
		if err != nil {
			return nil, err
		}
		return cache.Observe(mc), nil
	case cacheFile:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Observe(fc), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (file, redis, mongo, none)", kind)
	}
}

// env returns the SPANTOWER_-prefixed variable key or def.
func env(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/spantower/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Session Flags
// =============================================================================

// sessionFlags are the flags shared by every command that lays out a
// document.
type sessionFlags struct {
	configPath     string
	collectionPath string
	font           string
	width          float64
	abbrev         bool
	noCache        bool
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "visual configuration (TOML)")
	cmd.Flags().StringVar(&f.collectionPath, "collection", "", "collection configuration (YAML)")
	cmd.Flags().StringVar(&f.font, "font", fonts.KindGo, "text measurement: go, fixed or a .ttf path")
	cmd.Flags().Float64Var(&f.width, "width", 0, "canvas width override")
	cmd.Flags().BoolVar(&f.abbrev, "abbrev", true, "abbreviate labels that do not fit")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// session loads the configuration files and opens the fonts.
func (f *sessionFlags) session() (*session.Session, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}
	var coll *collection.Collection
	if f.collectionPath != "" {
		var err error
		if coll, err = collection.Load(f.collectionPath); err != nil {
			return nil, err
		}
	}
	return session.New(coll, cfg, f.font)
}

// options builds pipeline options for the document at path. --abbrev only
// overrides the configuration when given explicitly.
func (f *sessionFlags) options(cmd *cobra.Command, path string, sess *session.Session) pipeline.Options {
	opts := pipeline.Options{
		Path:    path,
		Width:   f.width,
		Session: sess,
		Logger:  loggerFromContext(cmd.Context()),
	}
	if cmd.Flags().Changed("abbrev") {
		abbrev := f.abbrev
		opts.Abbrevs = &abbrev
	}
	return opts
}

// watched returns the files whose change invalidates a layout.
func (f *sessionFlags) watched(doc string) []string {
	files := []string{doc}
	for _, p := range []string{f.configPath, f.collectionPath} {
		if p != "" {
			files = append(files, p)
		}
	}
	return files
}
