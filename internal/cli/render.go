package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/cache"
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/observability"
	"github.com/matzehuels/burrow/pkg/render"
	"github.com/matzehuels/burrow/pkg/render/nodelink"
	"github.com/matzehuels/burrow/pkg/solver"
	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

// Output formats.
const (
	formatText = "text"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

type renderFlags struct {
	input    inputFlags
	format   string
	output   string
	detailed bool
	solved   bool
	noCache  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [board-file|-]",
		Short: "Draw a board as text, Graphviz DOT or SVG",
		Long: `Render draws the slot graph of a board with its tokens.

The text format is the board diagram that solve and render read. The dot and
svg formats draw every slot as a node, with junctions as points.`,
		Example: `  burrow render puzzle.txt -f svg -o puzzle.svg
  burrow render --tokens "BA CD BC DA" --unfold
  burrow render puzzle.txt --solved -f dot --detailed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, &f)
		},
	}

	f.input.register(cmd)
	cmd.Flags().StringVarP(&f.format, "format", "f", formatText, "output format: text, dot or svg")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "label nodes with slot names")
	cmd.Flags().BoolVar(&f.solved, "solved", false, "solve first and draw the sorted board")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the answer and drawing cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, f *renderFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	switch f.format {
	case formatText, formatDOT, formatSVG:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown format %q (want text, dot or svg)", f.format)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := f.input.options(cmd, args, cfg)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var (
		topo *topology.Topology
		conf *state.Configuration
	)
	if f.solved {
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			return err
		}
		topo, conf = res.Topology, res.End
	} else if topo, conf, err = solver.Prepare(opts); err != nil {
		return err
	}

	began := time.Now()
	var data []byte
	switch f.format {
	case formatText:
		data = []byte(render.Text(conf))
	case formatDOT:
		data = []byte(nodelink.ToDOT(topo, conf, nodelink.Options{Detailed: f.detailed}))
	case formatSVG:
		dot := nodelink.ToDOT(topo, conf, nodelink.Options{Detailed: f.detailed})
		sp := newSpinner(cmd.ErrOrStderr(), "Rendering SVG")
		if isTerminal(cmd.ErrOrStderr()) {
			sp.start(ctx)
		}
		svg, cached, err := renderSVG(ctx, runner, dot, f.detailed, cfg.Cache.RenderTTL)
		sp.stop()
		if err != nil {
			return err
		}
		logger.Debug("drew svg", "bytes", len(svg), "cached", cached)
		data = svg
	}

	if f.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(f.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.output, err)
	}
	logger.Info("rendered",
		"format", f.format,
		"slots", topo.Len(),
		"duration", time.Since(began).Round(time.Millisecond))
	printFile(cmd.OutOrStdout(), f.output)
	return nil
}

// renderSVG renders dot through Graphviz, reusing a cached drawing of the
// same graph when there is one. New drawings are kept for ttl.
func renderSVG(ctx context.Context, runner *solver.Runner, dot string, detailed bool, ttl time.Duration) ([]byte, bool, error) {
	if runner.Cache == nil {
		svg, err := nodelink.RenderSVG(dot)
		return svg, false, err
	}

	key := runner.Keyer.RenderKey(cache.Digest([]byte(dot)), cache.RenderKeyOpts{Format: formatSVG, Detailed: detailed})
	if data, hit, err := runner.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, cache.KindRender)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, cache.KindRender)

	svg, err := nodelink.RenderSVG(dot)
	if err != nil {
		return nil, false, err
	}
	if ttl <= 0 {
		ttl = cache.RenderTTL
	}
	if err := runner.Cache.Set(ctx, key, svg, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, cache.KindRender, len(svg))
	}
	return svg, false, nil
}
