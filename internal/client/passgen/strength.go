package passgen

import "unicode"

type Strength int

const (
	Weak Strength = iota
	Medium
	Strong
)

func (s Strength) String() string {
	switch s {
	case Strong:
		return "strong"
	case Medium:
		return "medium"
	default:
		return "weak"
	}
}

// Classify rates the requested classes and length:
//   - strong: upper, lower, a digit or symbol, and length >= 8;
//   - medium: upper or lower, a digit or symbol, and length >= 6;
//   - weak otherwise.
func Classify(length int, c Classes) Strength {
	special := c.Digit || c.Symbol
	switch {
	case c.Upper && c.Lower && special && length >= 8:
		return Strong
	case (c.Upper || c.Lower) && special && length >= 6:
		return Medium
	default:
		return Weak
	}
}

// ClassifyPassword rates an existing password by the classes it contains.
// Any rune that is neither a letter nor a digit counts as a symbol.
func ClassifyPassword(p string) Strength {
	var c Classes
	n := 0
	for _, r := range p {
		n++
		switch {
		case unicode.IsUpper(r):
			c.Upper = true
		case unicode.IsLower(r):
			c.Lower = true
		case unicode.IsDigit(r):
			c.Digit = true
		default:
			c.Symbol = true
		}
	}
	return Classify(n, c)
}
