// Package word defines the alphabet, word, and presentation primitives shared
// by every solver in the module: a word is a finite sequence of letter
// indices, and a presentation is a finite alphabet together with a finite set
// of defining relations over it.
//
// All mutations are expected to happen at construction time; once built, a
// Presentation is treated as an immutable value and copied by callers that
// need to alter it (e.g. appending the Knuth-Bendix "extra letter", see
// ExtendAlphabet).
package word

import (
	"errors"
	"fmt"
	"strings"
)

// Letter indexes a single symbol of an alphabet. The module fixes this to
// uint32 rather than making every package generic over the letter's integer
// domain: alphabets in practice never approach 2^32 symbols, and a concrete
// type keeps WordGraph's dense tables and the rewrite trie free of generic
// instantiation overhead throughout the core. See DESIGN.md "Letter type".
type Letter = uint32

// Word is a finite sequence of letters. The empty word is the nil/zero-length
// slice; whether it is a legal word in a given Presentation is governed by
// that Presentation's ContainsEmptyWord flag, not by the type itself.
type Word []Letter

// Clone returns an independent copy of w.
func (w Word) Clone() Word {
	if w == nil {
		return nil
	}
	out := make(Word, len(w))
	copy(out, w)
	return out
}

// Equal reports whether w and v contain the same letters in the same order.
func (w Word) Equal(v Word) bool {
	if len(w) != len(v) {
		return false
	}
	for i := range w {
		if w[i] != v[i] {
			return false
		}
	}
	return true
}

// Reversed returns a new word with letters in reverse order. Used at the
// congruence facade boundary to implement left congruences via the "reverse
// trick" (spec §9 "Reversal for left congruences").
func (w Word) Reversed() Word {
	out := make(Word, len(w))
	for i, a := range w {
		out[len(w)-1-i] = a
	}
	return out
}

// Append returns a new word equal to w with letters appended; w itself is not
// mutated.
func (w Word) Append(letters ...Letter) Word {
	out := make(Word, 0, len(w)+len(letters))
	out = append(out, w...)
	out = append(out, letters...)
	return out
}

// String renders w as a human-readable dot-separated list of letter indices,
// e.g. "0.0.1". Used only by tests and structured logging, never consulted by
// any solver. Mirrors the teacher's habit of giving domain values a debug
// String() without making it part of any wire format.
func (w Word) String() string {
	if len(w) == 0 {
		return "ε"
	}
	parts := make([]string, len(w))
	for i, a := range w {
		parts[i] = fmt.Sprintf("%d", a)
	}
	return strings.Join(parts, ".")
}

// ToString renders w using alphabet as the printable name of each letter
// (alphabet[a] names letter a), space-separated, e.g. "a a b". Used only by
// tests and structured logging, never consulted by any solver; grounded on
// present.hpp's human-readable operator<< for a Presentation over a named
// alphabet rather than raw indices.
func ToString(w Word, alphabet []string) string {
	parts := make([]string, len(w))
	for i, a := range w {
		parts[i] = alphabet[a]
	}
	return strings.Join(parts, " ")
}

// ErrUnknownSymbol is returned by FromString when a token has no entry in
// the supplied alphabet.
var ErrUnknownSymbol = errors.New("word: symbol not found in alphabet")

// FromString parses a space-separated sequence of alphabet names (the
// inverse of ToString) back into a Word.
func FromString(s string, alphabet []string) (Word, error) {
	index := make(map[string]Letter, len(alphabet))
	for i, name := range alphabet {
		index[name] = Letter(i)
	}
	fields := strings.Fields(s)
	out := make(Word, 0, len(fields))
	for _, tok := range fields {
		a, ok := index[tok]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, tok)
		}
		out = append(out, a)
	}
	return out, nil
}

// Compare implements ShortLex (length, then lexicographic) comparison between
// w and v: -1 if w<v, 0 if equal, 1 if w>v. This is the default reduction
// order referenced throughout the Knuth-Bendix and Todd-Coxeter components.
func (w Word) Compare(v Word) int {
	if len(w) != len(v) {
		if len(w) < len(v) {
			return -1
		}
		return 1
	}
	for i := range w {
		if w[i] != v[i] {
			if w[i] < v[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Sentinel errors for Presentation construction and mutation, following the
// teacher's convention of one exported sentinel per precondition.
var (
	ErrLetterOutOfRange = errors.New("word: letter index out of range of alphabet")
	ErrEmptyWordBanned  = errors.New("word: empty word not permitted by this presentation")
	ErrAlphabetTooSmall = errors.New("word: alphabet must have at least one letter")
)

// Presentation is ⟨A | R⟩: an alphabet of size Size, a sequence of defining
// relations, and a flag stating whether the empty word is a legal word for
// this presentation.
type Presentation struct {
	size              int
	rules             [][2]Word
	containsEmptyWord bool
}

// New creates a Presentation over an alphabet {0,...,size-1}.
func New(size int, containsEmptyWord bool) (*Presentation, error) {
	if size <= 0 {
		return nil, ErrAlphabetTooSmall
	}
	return &Presentation{size: size, containsEmptyWord: containsEmptyWord}, nil
}

// Size returns the alphabet size d; legal letters are 0..Size()-1.
func (p *Presentation) Size() int { return p.size }

// ContainsEmptyWord reports whether ε is a legal word for this presentation.
func (p *Presentation) ContainsEmptyWord() bool { return p.containsEmptyWord }

// validate checks a word only contains letters in range, and (unless empty
// words are allowed) is non-empty.
func (p *Presentation) validate(w Word) error {
	if len(w) == 0 && !p.containsEmptyWord {
		return ErrEmptyWordBanned
	}
	for _, a := range w {
		if int(a) >= p.size {
			return fmt.Errorf("%w: letter %d, alphabet size %d", ErrLetterOutOfRange, a, p.size)
		}
	}
	return nil
}

// AddRule appends the relation (u,v) to the presentation after validating
// both sides against the alphabet and the empty-word policy. Rule order is
// preserved and is user-visible per spec §3.
func (p *Presentation) AddRule(u, v Word) error {
	if err := p.validate(u); err != nil {
		return err
	}
	if err := p.validate(v); err != nil {
		return err
	}
	p.rules = append(p.rules, [2]Word{u.Clone(), v.Clone()})
	return nil
}

// Rules returns the defining relations in the order they were added. The
// returned slice is a defensive copy; mutating it does not affect p.
func (p *Presentation) Rules() [][2]Word {
	out := make([][2]Word, len(p.rules))
	for i, r := range p.rules {
		out[i] = [2]Word{r[0].Clone(), r[1].Clone()}
	}
	return out
}

// Clone returns a deep, independent copy of p. The race dispatcher's runners
// each own a cloned Presentation (spec §5 "the presentation is passed by
// value... because Knuth-Bendix may alter it").
func (p *Presentation) Clone() *Presentation {
	clone := &Presentation{size: p.size, containsEmptyWord: p.containsEmptyWord}
	clone.rules = make([][2]Word, len(p.rules))
	for i, r := range p.rules {
		clone.rules[i] = [2]Word{r[0].Clone(), r[1].Clone()}
	}
	return clone
}

// ExtendAlphabet returns a clone of p with one additional letter appended to
// the alphabet (index Size()), the shape Knuth-Bendix's one-sided "extra
// letter" trick needs (spec §4.6, §9); nothing in this module calls it. The
// new letter index is returned alongside.
func (p *Presentation) ExtendAlphabet() (*Presentation, Letter) {
	clone := p.Clone()
	clone.size++
	return clone, Letter(p.size)
}

// Reversed returns a clone of p with every rule's both sides reversed,
// implementing the boundary transform for left congruences (spec §9
// "Reversal for left congruences").
func (p *Presentation) Reversed() *Presentation {
	clone := &Presentation{size: p.size, containsEmptyWord: p.containsEmptyWord}
	clone.rules = make([][2]Word, len(p.rules))
	for i, r := range p.rules {
		clone.rules[i] = [2]Word{r[0].Reversed(), r[1].Reversed()}
	}
	return clone
}
