package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spantower/pkg/render/nodelink"
)

// dotCommand creates the dot command, which exports the annotation graph.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		flags    sessionFlags
		output   string
		svg      bool
		png      bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "dot [doc.json]",
		Short: "Export the annotation graph as DOT, SVG or PNG",
		Long: `Export the annotation graph as a node-link diagram.

Spans become nodes and arcs become edges, colored by the collection.
Without --svg or --png the DOT source is written. Output goes to stdout
unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if svg && png {
				return fmt.Errorf("--svg and --png are mutually exclusive")
			}
			sess, err := flags.session()
			if err != nil {
				return err
			}

			// A cached model carries no annotation graph.
			res, err := c.layout(cmd.Context(), flags.options(cmd, args[0], sess), true)
			if err != nil {
				return err
			}
			printMessages(cmd.ErrOrStderr(), res.Messages)

			dot := nodelink.ToDOT(res.Document, nodelink.Options{
				Detailed:   detailed,
				Collection: sess.Collection,
			})
			data := []byte(dot)
			switch {
			case svg:
				data, err = nodelink.RenderSVG(dot)
			case png:
				data, err = nodelink.RenderPNG(dot)
			}
			if err != nil {
				return fmt.Errorf("render graph: %w", err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			printSuccess(cmd.ErrOrStderr(), "Graph written")
			printFile(cmd.ErrOrStderr(), output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG with Graphviz")
	cmd.Flags().BoolVar(&png, "png", false, "render PNG with Graphviz")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include offsets and attributes in node labels")

	return cmd
}
