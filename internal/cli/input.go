package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/board"
	"github.com/matzehuels/burrow/pkg/config"
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/solver"
)

// inputFlags select the puzzle for solve and render.
type inputFlags struct {
	tokens   string
	rowMajor bool
	depth    int
	unfold   bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.tokens, "tokens", "t", "", `token list instead of a board file, e.g. "BA CD BC DA"`)
	cmd.Flags().BoolVar(&f.rowMajor, "row-major", false, "read --tokens row by row instead of room by room")
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, "required room depth of the input")
	cmd.Flags().BoolVarP(&f.unfold, "unfold", "u", false, "insert the two extra rows before solving")
}

// options builds solver options from the board file in args (or "-" for
// stdin), the flags and cfg.
func (f *inputFlags) options(cmd *cobra.Command, args []string, cfg *config.Config) (solver.Options, error) {
	opts := solver.Options{
		Tokens:         f.tokens,
		Depth:          f.depth,
		CorridorLength: cfg.Puzzle.CorridorLength,
		Entrances:      cfg.Puzzle.Entrances,
		Unfold:         f.unfold,
		Types:          cfg.TokenTypes(),
		Search:         cfg.SearchOptions(),
		Timeout:        cfg.Search.Timeout,
	}
	if f.rowMajor {
		opts.Order = board.RowMajor
	}

	if len(args) > 0 {
		if f.tokens != "" {
			return opts, errs.New(errs.ErrCodeInvalidInput, "give a board file or --tokens, not both")
		}
		text, err := readBoard(cmd, args[0])
		if err != nil {
			return opts, err
		}
		opts.Board = text
	}
	return opts, opts.Validate()
}

func readBoard(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if os.IsNotExist(err) {
		return "", errs.Wrap(errs.ErrCodeFileNotFound, err, "board file %s not found", path)
	}
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "read board %s", path)
	}
	return string(data), nil
}
