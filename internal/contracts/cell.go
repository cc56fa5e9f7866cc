package contracts

import (
	"math"

	"github.com/moznion/go-optional"
)

// Cell is one panel value. None means "no data", which is never the same as 0.
type Cell = optional.Option[float64]

// Value wraps a defined number. NaN and ±Inf are stored as missing.
func Value(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return optional.None[float64]()
	}
	return optional.Some(v)
}

// Missing returns an empty cell
func Missing() Cell {
	return optional.None[float64]()
}

// Add returns a+b, missing if either side is missing
func Add(a, b Cell) Cell {
	if a.IsNone() || b.IsNone() {
		return Missing()
	}
	return Value(a.Unwrap() + b.Unwrap())
}

// Sub returns a-b, missing if either side is missing
func Sub(a, b Cell) Cell {
	if a.IsNone() || b.IsNone() {
		return Missing()
	}
	return Value(a.Unwrap() - b.Unwrap())
}

// Mul returns a*b, missing if either side is missing
func Mul(a, b Cell) Cell {
	if a.IsNone() || b.IsNone() {
		return Missing()
	}
	return Value(a.Unwrap() * b.Unwrap())
}

// Div returns a/b. Division by zero or by missing yields missing.
func Div(a, b Cell) Cell {
	if a.IsNone() || b.IsNone() || b.Unwrap() == 0 {
		return Missing()
	}
	return Value(a.Unwrap() / b.Unwrap())
}

// PctChange returns (cur-prev)/prev with the same missing policy as Div
func PctChange(prev, cur Cell) Cell {
	return Div(Sub(cur, prev), prev)
}

// Equal reports whether two cells are both missing or hold the same number
func Equal(a, b Cell) bool {
	if a.IsNone() || b.IsNone() {
		return a.IsNone() && b.IsNone()
	}
	return a.Unwrap() == b.Unwrap()
}
