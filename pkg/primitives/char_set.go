package primitives

import "fmt"

// CharSet efficiently represents a set of single-byte characters.
type CharSet struct {
	available []bool
	min       byte
	count     int
}

// NewCharSet returns an empty set covering min..max inclusive.
func NewCharSet(min, max byte) *CharSet {
	return &CharSet{
		available: make([]bool, int(max)-int(min)+1),
		min:       min,
		count:     0,
	}
}

// DefaultCharSet is the default character set for word filtering.
// It covers the 7-bit ASCII range.
func DefaultCharSet() *CharSet {
	return NewCharSet(0x00, 0x7f)
}

// CharSetOf returns a DefaultCharSet holding every byte of s.
func CharSetOf(s string) (*CharSet, error) {
	c := DefaultCharSet()
	for i := 0; i < len(s); i++ {
		if err := c.Add(s[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *CharSet) inRange(b byte) bool {
	return b >= c.min && int(b-c.min) < len(c.available)
}

// Add adds a character to the set.
func (c *CharSet) Add(b byte) error {
	if !c.inRange(b) {
		return fmt.Errorf("character %q is out of range", b)
	}

	if c.available[b-c.min] {
		return nil
	}

	c.count++
	c.available[b-c.min] = true
	return nil
}

// Remove removes a character from the set, reporting whether it was present.
func (c *CharSet) Remove(b byte) bool {
	if !c.Contains(b) {
		return false
	}
	c.available[b-c.min] = false
	c.count--
	return true
}

// Clone returns an independent copy of the set.
func (c *CharSet) Clone() *CharSet {
	return &CharSet{
		available: append([]bool(nil), c.available...),
		min:       c.min,
		count:     c.count,
	}
}

// Contains checks if a character is in the set. Characters outside the
// set's range are never contained.
func (c *CharSet) Contains(b byte) bool {
	return c.inRange(b) && c.available[b-c.min]
}

// IsEmpty checks if the set holds no characters.
func (c *CharSet) IsEmpty() bool {
	return c.count == 0
}

// Count returns the number of characters in the set.
func (c *CharSet) Count() int {
	return c.count
}

// String returns the members of the set in ascending order.
func (c *CharSet) String() string {
	out := make([]byte, 0, c.count)
	for i, ok := range c.available {
		if ok {
			out = append(out, c.min+byte(i))
		}
	}
	return string(out)
}
