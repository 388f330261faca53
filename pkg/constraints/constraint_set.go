// Package constraints holds the validated word constraints and the predicate
// that evaluates a single candidate word against them.
package constraints

import (
	"fmt"
	"strings"

	"crosswarped.com/wordfilter/pkg/primitives"
)

// MaxWordLength is the longest word that can be searched for.
const MaxWordLength = 16

// Options are the raw, unvalidated inputs to New. Empty strings mean the
// corresponding constraint is not active.
type Options struct {
	WordLength   int
	Pattern      string
	Excluded     string
	Required     string
	WordlistPath string
}

// ConstraintSet is an immutable, validated set of word constraints.
// It is safe for concurrent use.
type ConstraintSet struct {
	wordLength   int
	pattern      primitives.Pattern
	excluded     *primitives.CharSet
	required     *primitives.CharSet
	wordlistPath string
}

// New validates opts and builds a ConstraintSet. Any failure is a
// *ConfigurationError.
func New(opts Options) (*ConstraintSet, error) {
	if opts.WordlistPath == "" {
		return nil, configErr("wordlist", "missing wordlist")
	}
	if opts.WordLength <= 0 {
		return nil, configErr("count", "no or 0 count entered")
	}
	if opts.WordLength > MaxWordLength {
		return nil, configErr("count", "char-count %d greater than %d", opts.WordLength, MaxWordLength)
	}

	cs := &ConstraintSet{
		wordLength:   opts.WordLength,
		wordlistPath: opts.WordlistPath,
	}

	if opts.Pattern != "" {
		p, err := primitives.ParsePattern(opts.Pattern)
		if err != nil {
			return nil, configErr("pattern", "%v", err)
		}
		if p.Len() != opts.WordLength {
			return nil, configErr("pattern", "pattern length %d does not match char-count %d", p.Len(), opts.WordLength)
		}
		cs.pattern = p
	}

	var err error
	if opts.Excluded != "" {
		if cs.excluded, err = primitives.CharSetOf(opts.Excluded); err != nil {
			return nil, configErr("excluded", "%v", err)
		}
	}
	if opts.Required != "" {
		if cs.required, err = primitives.CharSetOf(opts.Required); err != nil {
			return nil, configErr("required", "%v", err)
		}
	}

	return cs, nil
}

// WordLength returns the exact payload length a word must have.
func (cs *ConstraintSet) WordLength() int {
	return cs.wordLength
}

// Pattern returns the positional pattern; the zero Pattern when none is set.
func (cs *ConstraintSet) Pattern() primitives.Pattern {
	return cs.pattern
}

// Excluded returns a copy of the excluded characters, or nil.
func (cs *ConstraintSet) Excluded() *primitives.CharSet {
	if cs.excluded == nil {
		return nil
	}
	return cs.excluded.Clone()
}

// Required returns a copy of the required characters, or nil.
func (cs *ConstraintSet) Required() *primitives.CharSet {
	if cs.required == nil {
		return nil
	}
	return cs.required.Clone()
}

func (cs *ConstraintSet) WordlistPath() string {
	return cs.wordlistPath
}

// OpenPositions returns the number of positions the pattern leaves to
// wildcards. Only these can satisfy required characters.
func (cs *ConstraintSet) OpenPositions() int {
	return cs.wordLength - cs.pattern.Literals()
}

// Satisfiable reports whether any word could match. It is false when there
// are more required characters than open positions, or when a required
// character is also excluded.
func (cs *ConstraintSet) Satisfiable() bool {
	if cs.required == nil {
		return true
	}
	if cs.required.Count() > cs.OpenPositions() {
		return false
	}
	if cs.excluded == nil {
		return true
	}
	required := cs.required.String()
	for i := 0; i < len(required); i++ {
		if cs.excluded.Contains(required[i]) {
			return false
		}
	}
	return true
}

func (cs *ConstraintSet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "word_len: %d", cs.wordLength)
	if cs.pattern.IsSet() {
		fmt.Fprintf(&b, " pattern: %s (%d pinned)", cs.pattern, cs.pattern.Literals())
	}
	if cs.excluded != nil {
		fmt.Fprintf(&b, " excluded: %s", cs.excluded)
	}
	if cs.required != nil {
		fmt.Fprintf(&b, " required: %s", cs.required)
	}
	fmt.Fprintf(&b, " word_list: %s", cs.wordlistPath)
	return b.String()
}
