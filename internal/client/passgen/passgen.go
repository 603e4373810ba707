// Package passgen generates password candidates and classifies their
// strength.
package passgen

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Digits    = "0123456789"
	Symbols   = "@#$&_+=|./"

	MinLength = 1
	MaxLength = 128
)

var (
	ErrNoClasses     = errors.New("no character classes enabled")
	ErrInvalidLength = fmt.Errorf("length must be between %d and %d", MinLength, MaxLength)
)

// Classes selects the character classes a candidate draws from.
type Classes struct {
	Upper  bool
	Lower  bool
	Digit  bool
	Symbol bool
}

// ParseClasses reads a class set such as "ulds" (upper, lower, digit,
// symbol) in any order. An empty set enables everything.
func ParseClasses(set string) (Classes, error) {
	if set == "" {
		return Classes{Upper: true, Lower: true, Digit: true, Symbol: true}, nil
	}
	var c Classes
	for _, r := range strings.ToLower(set) {
		switch r {
		case 'u':
			c.Upper = true
		case 'l':
			c.Lower = true
		case 'd':
			c.Digit = true
		case 's':
			c.Symbol = true
		default:
			return Classes{}, fmt.Errorf("unknown class %q, want any of u, l, d, s", r)
		}
	}
	return c, nil
}

func (c Classes) sets() []string {
	var out []string
	if c.Upper {
		out = append(out, Uppercase)
	}
	if c.Lower {
		out = append(out, Lowercase)
	}
	if c.Digit {
		out = append(out, Digits)
	}
	if c.Symbol {
		out = append(out, Symbols)
	}
	return out
}

// Count returns the number of enabled classes.
func (c Classes) Count() int {
	return len(c.sets())
}

func (c Classes) String() string {
	var b strings.Builder
	for _, x := range []struct {
		on bool
		ch byte
	}{{c.Upper, 'u'}, {c.Lower, 'l'}, {c.Digit, 'd'}, {c.Symbol, 's'}} {
		if x.on {
			b.WriteByte(x.ch)
		}
	}
	return b.String()
}

// Candidate is a generated password with its strength.
type Candidate struct {
	Password string
	Strength Strength
}

type Generator struct {
	src Source
}

// New returns a Generator drawing from src, or from crypto/rand when src is
// nil.
func New(src Source) *Generator {
	if src == nil {
		src = CryptoSource{}
	}
	return &Generator{src: src}
}

// Generate builds a password of exactly length characters holding at least
// one character of every enabled class. When length is below the number of
// enabled classes the mandatory characters are shuffled and truncated.
func (g *Generator) Generate(length int, classes Classes) (Candidate, error) {
	if length < MinLength || length > MaxLength {
		return Candidate{}, ErrInvalidLength
	}
	sets := classes.sets()
	if len(sets) == 0 {
		return Candidate{}, ErrNoClasses
	}

	buf := g.assemble(length, sets)
	g.shuffle(buf)
	if len(buf) > length {
		buf = buf[:length]
	}

	return Candidate{
		Password: string(buf),
		Strength: Classify(length, classes),
	}, nil
}

// assemble returns one mandatory character per set followed by filler drawn
// uniformly from the union of all sets, max(length, len(sets)) in total.
func (g *Generator) assemble(length int, sets []string) []byte {
	n := max(length, len(sets))
	buf := make([]byte, 0, n)
	for _, s := range sets {
		buf = append(buf, s[g.src.IntN(len(s))])
	}

	union := strings.Join(sets, "")
	for len(buf) < n {
		buf = append(buf, union[g.src.IntN(len(union))])
	}
	return buf
}

// shuffle is a Fisher-Yates shuffle.
func (g *Generator) shuffle(buf []byte) {
	for i := len(buf) - 1; i > 0; i-- {
		j := g.src.IntN(i + 1)
		buf[i], buf[j] = buf[j], buf[i]
	}
}

// Suggest returns the five name-based templates for name. A blank name
// yields nil.
func Suggest(name string) []Candidate {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	runes := []rune(name)
	formatted := string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))

	patterns := []string{
		"@" + formatted + "123",
		formatted + "#1#2#3",
		"#" + formatted + "@123",
		"#" + formatted + "00@123",
		"@123-" + formatted,
	}

	out := make([]Candidate, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, Candidate{Password: p, Strength: ClassifyPassword(p)})
	}
	return out
}
