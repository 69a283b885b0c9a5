package state

import (
	"unicode"

	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/topology"
)

// Sentinel errors for configuration construction.
var (
	ErrUnknownToken = errs.New(errs.ErrCodeInvalidToken, "unknown token symbol")
	ErrTokenCount   = errs.New(errs.ErrCodeTokenCount, "token count does not match home slot count")
	ErrBadPlacement = errs.New(errs.ErrCodeInvalidInput, "invalid token placement")
)

// FromTokens builds the initial configuration from a token list in canonical
// reading order: rooms in type order, shallow to deep within each room.
// Whitespace in tokens is ignored. The corridor starts empty.
//
// FromTokens fails with ErrUnknownToken for a symbol that names no type, and
// with ErrTokenCount unless exactly one token is given per Home slot.
func FromTokens(topo *topology.Topology, tokens string) (*Configuration, error) {
	var symbols []rune
	for _, r := range tokens {
		if !unicode.IsSpace(r) {
			symbols = append(symbols, r)
		}
	}
	if len(symbols) != topo.HomeSlotCount() {
		return nil, errs.New(errs.ErrCodeTokenCount,
			"got %d tokens for %d home slots", len(symbols), topo.HomeSlotCount())
	}

	b := NewBuilder(topo)
	i := 0
	for ti := 0; ti < topo.TypeCount(); ti++ {
		for _, h := range topo.Homes(ti) {
			if err := b.Place(h, symbols[i]); err != nil {
				return nil, err
			}
			i++
		}
	}
	return b.Build()
}

// Builder places tokens on arbitrary resting slots. It exists for boards that
// start with tokens already in the corridor, and for tests.
type Builder struct {
	c *Configuration
}

// NewBuilder returns a builder over an empty configuration.
func NewBuilder(topo *topology.Topology) *Builder {
	return &Builder{c: newConfiguration(topo)}
}

// Place puts a token with the given symbol on slot i.
func (b *Builder) Place(i int, symbol rune) error {
	topo := b.c.topo
	ti, ok := topo.TypeBySymbol(symbol)
	if !ok {
		return errs.New(errs.ErrCodeInvalidToken, "unknown token symbol %q", symbol)
	}
	return b.PlaceType(i, ti)
}

// PlaceType puts a token of type ti on slot i.
func (b *Builder) PlaceType(i, ti int) error {
	topo := b.c.topo
	switch {
	case i < 0 || i >= topo.Len():
		return errs.New(errs.ErrCodeInvalidInput, "slot %d out of range", i)
	case ti < 0 || ti >= topo.TypeCount():
		return errs.New(errs.ErrCodeInvalidToken, "token type %d out of range", ti)
	case topo.Slot(i).Kind == topology.Junction:
		return errs.New(errs.ErrCodeInvalidInput, "cannot rest a token on %v", topo.Slot(i))
	case !b.c.Empty(i):
		return errs.New(errs.ErrCodeInvalidInput, "%v is already occupied", topo.Slot(i))
	}
	b.c.cells[i] = byte(ti + 1)
	return nil
}

// Build validates the token count and returns the configuration at cost 0.
// The builder must not be used afterwards.
func (b *Builder) Build() (*Configuration, error) {
	if n, want := b.c.Tokens(), b.c.topo.HomeSlotCount(); n != want {
		return nil, errs.New(errs.ErrCodeTokenCount, "got %d tokens for %d home slots", n, want)
	}
	c := b.c
	b.c = nil
	return c, nil
}
