package solver

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/burrow/pkg/board"
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/search"
	"github.com/matzehuels/burrow/pkg/topology"
)

// Options describes one solve.
type Options struct {
	// Board is a board diagram. It takes precedence over Tokens.
	Board string

	// Tokens is a compact token list, read in Order.
	Tokens string
	Order  board.Order

	// Depth, when positive, is the required room depth of the input before
	// unfolding. A token list of another depth fails with TOKEN_COUNT and a
	// diagram of another depth with INVALID_DEPTH.
	Depth int

	// CorridorLength and Entrances override the default corridor geometry
	// for Tokens. Diagrams carry their own geometry.
	CorridorLength int
	Entrances      []int

	// Unfold inserts board.DefaultUnfoldRows below the first room row.
	Unfold bool

	// Types are the token types. Nil selects the defaults.
	Types []topology.TokenType

	// Search bounds the engine. Visit and Progress are passed through.
	Search search.Options

	// Timeout, when positive, bounds the search wall time.
	Timeout time.Duration

	// Refresh skips the cache lookup. The answer is still stored.
	Refresh bool

	// Logger overrides the runner's logger for this solve.
	Logger *log.Logger
}

// Validate checks that exactly one kind of input is present.
func (o *Options) Validate() error {
	switch {
	case o.Board == "" && o.Tokens == "":
		return errs.New(errs.ErrCodeInvalidInput, "a board diagram or a token list is required")
	case o.Depth < 0:
		return errs.New(errs.ErrCodeInvalidDepth, "depth must not be negative, got %d", o.Depth)
	case o.Timeout < 0:
		return errs.New(errs.ErrCodeInvalidInput, "timeout must not be negative")
	}
	return nil
}
