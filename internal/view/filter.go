// Package view derives what each screen shows from the fixtures and the
// caller's current search and filter state.
package view

import "strings"

const DefaultEmptyMessage = "No items match your search."

type Predicate[T any] func(T) bool

// Query is one screen's filter state. An item is visible iff one of its
// text fields contains Text (case-insensitive) and every filter holds.
type Query[T any] struct {
	Text         string
	Fields       func(T) []string
	Filters      []Predicate[T]
	EmptyMessage string
}

type Result[T any] struct {
	Items        []T    `json:"items"`
	Total        int    `json:"total"`
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"empty_message,omitempty"`
}

func (q Query[T]) Matches(item T) bool {
	if !q.matchesText(item) {
		return false
	}
	for _, f := range q.Filters {
		if f != nil && !f(item) {
			return false
		}
	}
	return true
}

func (q Query[T]) matchesText(item T) bool {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return true
	}
	if q.Fields == nil {
		return false
	}
	for _, field := range q.Fields(item) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Apply keeps source order. The result never aliases items.
func (q Query[T]) Apply(items []T) Result[T] {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if q.Matches(it) {
			out = append(out, it)
		}
	}
	res := Result[T]{Items: out, Total: len(items)}
	if len(out) == 0 {
		res.Empty = true
		res.EmptyMessage = q.EmptyMessage
		if res.EmptyMessage == "" {
			res.EmptyMessage = DefaultEmptyMessage
		}
	}
	return res
}

// FieldEquals matches when the accessor equals want, ignoring case.
// An empty want or "all" disables the filter.
func FieldEquals[T any](get func(T) string, want string) Predicate[T] {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, "all") {
		return nil
	}
	return func(item T) bool { return strings.EqualFold(get(item), want) }
}

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Page returns the 1-based page of items, clamping page and size.
func Page[T any](items []T, page, size int) []T {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
