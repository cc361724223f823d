package function

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownFamily       = errors.New("unknown function family")
	ErrUnsupportedExponent = errors.New("unsupported polynomial exponent")
	ErrZeroScale           = errors.New("scale must be non-zero")
)

// Family identifies a fixed curve shape before scale and shift are applied.
type Family int

const (
	Unknown Family = iota
	Quadratic
	Cubic
	AbsoluteValue
	Logarithm
	Exponential
	PowerOfTwo
	Reciprocal
	SquareRoot
	CubeRoot
)

// Families lists every supported family in declaration order.
var Families = []Family{
	Quadratic, Cubic, AbsoluteValue, Logarithm, Exponential,
	PowerOfTwo, Reciprocal, SquareRoot, CubeRoot,
}

var familyNames = map[Family]string{
	Quadratic:     "quadratic",
	Cubic:         "cubic",
	AbsoluteValue: "abs",
	Logarithm:     "ln",
	Exponential:   "exp",
	PowerOfTwo:    "pow2",
	Reciprocal:    "reciprocal",
	SquareRoot:    "sqrt",
	CubeRoot:      "cbrt",
}

// latexNames are the base equations the graphing surface renders.
var latexNames = map[Family]string{
	Quadratic:     `x^{2}`,
	Cubic:         `x^{3}`,
	AbsoluteValue: `\left|x\right|`,
	Logarithm:     `\ln{x}`,
	Exponential:   `e^{x}`,
	PowerOfTwo:    `2^{x}`,
	Reciprocal:    `\frac{1}{x}`,
	SquareRoot:    `\sqrt[2]{x}`,
	CubeRoot:      `\sqrt[3]{x}`,
}

var equationTypes = map[string]Family{
	"logarithm":      Logarithm,
	"exponential":    Exponential,
	"absolute value": AbsoluteValue,
	"rational":       Reciprocal,
	"square root":    SquareRoot,
	"cube root":      CubeRoot,
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// LaTeX returns the base equation the display layer plots for f.
func (f Family) LaTeX() string {
	return latexNames[f]
}

// Valid reports whether f is one of the supported families.
func (f Family) Valid() bool {
	_, ok := familyNames[f]
	return ok
}

// Pole returns the t at which the family's evaluator is undefined.
func (f Family) Pole() (float64, bool) {
	if f == Reciprocal {
		return 0, true
	}
	return 0, false
}

// Color is the display color of the instrument that voices f.
func (f Family) Color() string {
	switch f {
	case Quadratic:
		return "orange"
	case Cubic:
		return "darkgreen"
	case Exponential:
		return "green"
	case Logarithm:
		return "blue"
	case AbsoluteValue:
		return "brown"
	case Reciprocal:
		return "purple"
	case SquareRoot:
		return "red"
	case CubeRoot:
		return "darkblue"
	}
	return "black"
}

// ParseFamily resolves a short name, a LaTeX base equation, or an equation
// type. "Polynomial" is ambiguous without an exponent; use FromPolynomial.
func ParseFamily(name string) (Family, error) {
	key := strings.TrimSpace(name)
	for f, n := range latexNames {
		if key == n {
			return f, nil
		}
	}
	key = strings.ToLower(key)
	for f, n := range familyNames {
		if key == n {
			return f, nil
		}
	}
	if f, ok := equationTypes[key]; ok {
		return f, nil
	}
	switch key {
	case "log", "logarithm":
		return Logarithm, nil
	case "absolute", "absolutevalue":
		return AbsoluteValue, nil
	case "exp2", "poweroftwo":
		return PowerOfTwo, nil
	case "squareroot":
		return SquareRoot, nil
	case "cuberoot":
		return CubeRoot, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
}

// FromPolynomial maps a polynomial exponent to its family.
func FromPolynomial(exponent int) (Family, error) {
	switch exponent {
	case 2:
		return Quadratic, nil
	case 3:
		return Cubic, nil
	}
	return Unknown, fmt.Errorf("%w: x^%d", ErrUnsupportedExponent, exponent)
}

// Lookup resolves a family from an equation type and optional exponent, the
// way the equation entry form submits them. exponent is ignored unless the
// type is "Polynomial".
func Lookup(name string, exponent int) (Family, error) {
	if strings.EqualFold(strings.TrimSpace(name), "polynomial") {
		return FromPolynomial(exponent)
	}
	return ParseFamily(name)
}
