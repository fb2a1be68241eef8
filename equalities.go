package alu

import (
	"bytes"
	"fmt"
)

// Equality records how a tagged EQL expression was resolved.
type Equality int8

const (
	EqualityUnresolved Equality = iota
	EqualityWon                 // the compared values were equal
	EqualityFailed              // the compared values differed
)

// String returns the string representation of the equality.
func (e Equality) String() string {
	switch e {
	case EqualityUnresolved:
		return "unresolved"
	case EqualityWon:
		return "won"
	case EqualityFailed:
		return "failed"
	default:
		return fmt.Sprintf("Equality<%d>", e)
	}
}

// MergeEquality combines two observations of the same constraint.
// Returns ErrEqualityConflict if one is won and the other failed.
func MergeEquality(a, b Equality) (Equality, error) {
	switch {
	case a == EqualityUnresolved:
		return b, nil
	case b == EqualityUnresolved, a == b:
		return a, nil
	default:
		return a, ErrEqualityConflict
	}
}

// Equalities is the equality record of an expression: one entry per
// constraint tag. Entries only move from unresolved to won or failed.
type Equalities [NumInputs]Equality

// Merge returns the union of e and other.
func (e Equalities) Merge(other Equalities) (Equalities, error) {
	for i := range other {
		v, err := MergeEquality(e[i], other[i])
		if err != nil {
			return e, fmt.Errorf("%w: tag %d is both %s and %s", err, i, e[i], other[i])
		}
		e[i] = v
	}
	return e, nil
}

// Set returns a copy of e with tag resolved to v. NoTag leaves e unchanged.
func (e Equalities) Set(tag int, v Equality) (Equalities, error) {
	if tag == NoTag {
		return e, nil
	}
	assert(tag >= 0 && tag < NumInputs, "equality tag out of range: %d", tag)

	merged, err := MergeEquality(e[tag], v)
	if err != nil {
		return e, fmt.Errorf("%w: tag %d is both %s and %s", err, tag, e[tag], v)
	}
	e[tag] = merged
	return e, nil
}

// Score returns the number of won and failed constraints.
func (e Equalities) Score() (wins, fails int) {
	for _, v := range e {
		switch v {
		case EqualityWon:
			wins++
		case EqualityFailed:
			fails++
		}
	}
	return wins, fails
}

// Project returns a copy of e with every tag outside s unresolved.
func (e Equalities) Project(s InputSet) Equalities {
	for i := range e {
		if !s.Has(i) {
			e[i] = EqualityUnresolved
		}
	}
	return e
}

// IsZero returns true if no constraint has been resolved.
func (e Equalities) IsZero() bool {
	return e == Equalities{}
}

// String returns the record as one character per tag: '+' won, '-' failed,
// '.' unresolved.
func (e Equalities) String() string {
	var buf bytes.Buffer
	for _, v := range e {
		switch v {
		case EqualityWon:
			buf.WriteByte('+')
		case EqualityFailed:
			buf.WriteByte('-')
		default:
			buf.WriteByte('.')
		}
	}
	return buf.String()
}

// CompareEqualities orders records by wins, then fails, then entry by entry.
func CompareEqualities(a, b Equalities) int {
	if a == b {
		return 0
	}

	aw, af := a.Score()
	bw, bf := b.Score()
	if aw != bw {
		return compareInt(aw, bw)
	} else if af != bf {
		return compareInt(af, bf)
	}

	for i := range a {
		if a[i] != b[i] {
			return compareInt(int(a[i]), int(b[i]))
		}
	}
	return 0
}

func compareInt(a, b int) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
