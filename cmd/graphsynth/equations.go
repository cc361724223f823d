package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbegin/graphsynth-go"
)

// equationList collects repeated -eq flags.
type equationList []graphsynth.Equation

func (l *equationList) String() string {
	parts := make([]string, len(*l))
	for i, e := range *l {
		parts[i] = fmt.Sprintf("%s:%g,%g,%g", e.Family, e.Scale, e.XShift, e.YShift)
	}
	return strings.Join(parts, " ")
}

func (l *equationList) Set(v string) error {
	e, err := parseEquation(v)
	if err != nil {
		return err
	}
	*l = append(*l, e)
	return nil
}

// parseEquation reads "family:scale,xshift,yshift[,gain]". Missing numbers
// default to scale 1 and zero shifts. "poly2" and "poly3" select a
// polynomial by exponent.
func parseEquation(v string) (graphsynth.Equation, error) {
	name, args, _ := strings.Cut(strings.TrimSpace(v), ":")
	if name == "" {
		return graphsynth.Equation{}, fmt.Errorf("invalid -eq %q (expected family:scale,xshift,yshift[,gain])", v)
	}
	e := graphsynth.Equation{Family: name, Scale: 1}
	if rest, ok := strings.CutPrefix(strings.ToLower(name), "poly"); ok && rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return graphsynth.Equation{}, fmt.Errorf("invalid -eq %q: bad polynomial exponent", v)
		}
		e.Family, e.Exponent = "Polynomial", n
	}
	if strings.TrimSpace(args) == "" {
		return e, nil
	}
	fields := strings.Split(args, ",")
	if len(fields) > 4 {
		return graphsynth.Equation{}, fmt.Errorf("invalid -eq %q: too many values", v)
	}
	var gain float64
	dst := []*float64{&e.Scale, &e.XShift, &e.YShift, &gain}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return graphsynth.Equation{}, fmt.Errorf("invalid -eq %q: %w", v, err)
		}
		*dst[i] = n
		if i == 3 {
			e.Gain = graphsynth.Gain(n)
		}
	}
	return e, nil
}
