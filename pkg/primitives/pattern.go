package primitives

import "fmt"

// Wildcard marks a pattern position that accepts any character.
const Wildcard = '_'

// Pattern is a fixed-position template for a word. Every position holds
// either Wildcard or a literal character the word must have at that index.
//
// The zero Pattern is "no pattern": every position is unconstrained.
type Pattern struct {
	cells string
}

// ParsePattern validates s as a pattern. Only 7-bit ASCII is accepted.
func ParsePattern(s string) (Pattern, error) {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return Pattern{}, fmt.Errorf("pattern position %d holds non-ASCII byte %#x", i, s[i])
		}
	}
	return Pattern{cells: s}, nil
}

// IsSet reports whether the pattern constrains anything at all.
func (p Pattern) IsSet() bool {
	return p.cells != ""
}

// Len returns the number of positions in the pattern.
func (p Pattern) Len() int {
	return len(p.cells)
}

// LiteralAt returns the literal pinned at index, if any. Wildcards and
// indices beyond the pattern report false.
func (p Pattern) LiteralAt(index int) (byte, bool) {
	if index < 0 || index >= len(p.cells) {
		return 0, false
	}
	if c := p.cells[index]; c != Wildcard {
		return c, true
	}
	return 0, false
}

// Literals returns the number of pinned positions.
func (p Pattern) Literals() int {
	n := 0
	for i := range len(p.cells) {
		if p.cells[i] != Wildcard {
			n++
		}
	}
	return n
}

func (p Pattern) String() string {
	return p.cells
}
