package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Key kinds. Every key a [Keyer] derives ends in "<kind>:<digest>", so
// backends can tell answers from drawings without decoding the value.
const (
	KindSolve  = "solve"
	KindRender = "render"
)

// Kinds lists the key kinds in a stable order.
var Kinds = []string{KindSolve, KindRender}

// Keyer derives cache keys.
type Keyer interface {
	// SolveKey returns the key for a solved puzzle.
	SolveKey(opts SolveKeyOpts) string

	// RenderKey returns the key for a rendered diagram of a board.
	RenderKey(boardHash string, opts RenderKeyOpts) string
}

// SolveKeyOpts holds every input that can change a search answer.
type SolveKeyOpts struct {
	Board string // Board diagram, which fixes geometry and token placement
	Types string // Token symbols and multipliers, e.g. "A:1,B:10"
}

// RenderKeyOpts holds the inputs of a rendered diagram.
type RenderKeyOpts struct {
	Format   string // "dot" or "svg"
	Detailed bool
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SolveKey returns "solve:<digest>".
func (k *DefaultKeyer) SolveKey(opts SolveKeyOpts) string {
	return digestKey(KindSolve, opts.Board, opts.Types)
}

// RenderKey returns "render:<digest>".
func (k *DefaultKeyer) RenderKey(boardHash string, opts RenderKeyOpts) string {
	return digestKey(KindRender, boardHash, opts.Format, strconv.FormatBool(opts.Detailed))
}

// Digest returns the hex SHA-256 of data. Drawings are keyed by the digest
// of their DOT source.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// KindOf returns the kind of a key built by a Keyer, looking past any scope
// prefix. Keys of unknown shape return "".
func KindOf(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return ""
	}
	head := key[:i]
	kind := head[strings.LastIndexByte(head, ':')+1:]
	for _, k := range Kinds {
		if kind == k {
			return kind
		}
	}
	return ""
}

// digestKey hashes fields with their lengths so a board ending in "A" and a
// type list starting with "A" cannot trade characters.
func digestKey(kind string, fields ...string) string {
	h := sha256.New()
	for _, f := range fields {
		fmt.Fprintf(h, "%d:%s", len(f), f)
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
