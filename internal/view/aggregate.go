package view

import "github.com/shopspring/decimal"

func Sum[T any](items []T, value func(T) int) int {
	total := 0
	for _, it := range items {
		total += value(it)
	}
	return total
}

func Count[T any](items []T, pred Predicate[T]) int {
	n := 0
	for _, it := range items {
		if pred == nil || pred(it) {
			n++
		}
	}
	return n
}

// Percent is part/whole*100 rounded to one decimal place. A zero whole
// yields zero.
func Percent(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(whole)).Round(1)
}

// Point and Series are already shaped for the chart library on the page.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Series struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Points []Point `json:"points"`
}

// GroupCount counts items per key, keeping first-seen key order.
func GroupCount[T any](items []T, key func(T) string) []Point {
	idx := map[string]int{}
	var out []Point
	for _, it := range items {
		k := key(it)
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, Point{Label: k})
			i = len(out) - 1
		}
		out[i].Value++
	}
	return out
}

// GroupSum sums value per key, keeping first-seen key order.
func GroupSum[T any](items []T, key func(T) string, value func(T) float64) []Point {
	idx := map[string]int{}
	var out []Point
	for _, it := range items {
		k := key(it)
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, Point{Label: k})
			i = len(out) - 1
		}
		out[i].Value += value(it)
	}
	return out
}
