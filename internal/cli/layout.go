package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	spanio "github.com/matzehuels/spantower/pkg/io"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/pipeline"
)

// layoutCommand creates the layout command for computing layout models.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  sessionFlags
		output string
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [doc.json]",
		Short: "Compute the layout model of an annotated document",
		Long: `Compute the layout model of an annotated document.

The layout command reads a document payload (text, entities, events,
relations, attributes and comments), builds the annotation graph and
computes the positions of rows, span boxes and arcs. The model is
written as JSON.

Data problems such as unknown span references do not stop the layout;
they are reported as messages. Results are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.session()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, args[0], sess)
			return c.runLayout(cmd, opts, output, flags.noCache, quiet)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print data messages")

	return cmd
}

// runLayout computes the layout and writes the model.
func (c *CLI) runLayout(cmd *cobra.Command, opts pipeline.Options, output string, noCache, quiet bool) error {
	ctx := cmd.Context()
	res, err := c.layout(ctx, opts, noCache)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultOutput(opts.Path, ".layout.json")
	}
	if err := spanio.WriteModelFile(outputPath, res.Model); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	w := cmd.OutOrStdout()
	if !quiet {
		printMessages(w, res.Messages)
	}
	printSuccess(w, "Layout complete")
	printFile(w, outputPath)
	printStats(w, res.Stats, res.CacheInfo.LayoutHit)
	return nil
}

// layout runs one pipeline pass with a fresh runner.
func (c *CLI) layout(ctx context.Context, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", opts.Path, err)
	}
	prog.done("laid out "+filepath.Base(opts.Path), "rows", res.Stats.Rows, "errors", countSeverity(res.Messages, messages.SeverityError))
	return res, nil
}

// defaultOutput replaces the extension of input with suffix.
func defaultOutput(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

func countSeverity(msgs []messages.Message, s messages.Severity) int {
	n := 0
	for _, m := range msgs {
		if m.Severity == s {
			n++
		}
	}
	return n
}
