// Package query filters and orders in-memory record collections.
//
// An Engine is configured once per record type with the fields it can search,
// filter and sort on. Apply never mutates its input and always sorts stably,
// so records with equal keys keep their relative input order.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/normalize"
)

// All is the categorical sentinel meaning "no filter".
const All = "all"

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder maps anything other than "desc" to Asc.
func ParseOrder(s string) Order {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

type Kind int

const (
	String Kind = iota
	Number
	Time
)

// SortField describes how a sortable field is extracted and compared.
type SortField[T any] struct {
	Kind   Kind
	Text   func(T) string
	Number func(T) float64
}

// Criteria is the engine-level view of a domain search spec.
type Criteria struct {
	Search string
	Equals map[string]string
	Date   string
	SortBy string
	Order  Order
}

// Engine applies Criteria to slices of T.
type Engine[T any] struct {
	searchable  []func(T) string
	categorical map[string]func(T) string
	date        func(T) string
	sortable    map[string]SortField[T]
}

func NewEngine[T any]() *Engine[T] {
	return &Engine[T]{
		categorical: make(map[string]func(T) string),
		sortable:    make(map[string]SortField[T]),
	}
}

// Searchable registers a field matched by the free-text search.
func (e *Engine[T]) Searchable(field func(T) string) *Engine[T] {
	e.searchable = append(e.searchable, field)
	return e
}

// Categorical registers an exact-match filter under name.
func (e *Engine[T]) Categorical(name string, field func(T) string) *Engine[T] {
	e.categorical[name] = field
	return e
}

// CalendarDay registers the field compared against Criteria.Date.
func (e *Engine[T]) CalendarDay(field func(T) string) *Engine[T] {
	e.date = field
	return e
}

func (e *Engine[T]) SortText(name string, kind Kind, field func(T) string) *Engine[T] {
	e.sortable[name] = SortField[T]{Kind: kind, Text: field}
	return e
}

func (e *Engine[T]) SortNumber(name string, field func(T) float64) *Engine[T] {
	e.sortable[name] = SortField[T]{Kind: Number, Number: field}
	return e
}

// CanSort reports whether name is a registered sort field.
func (e *Engine[T]) CanSort(name string) bool {
	_, ok := e.sortable[name]
	return ok
}

// Apply returns a filtered, ordered copy of records.
func (e *Engine[T]) Apply(records []T, c Criteria) []T {
	out := make([]T, 0, len(records))

	needle := strings.ToLower(c.Search)
	for _, r := range records {
		if needle != "" && !e.matchText(r, needle) {
			continue
		}
		if !e.matchCategories(r, c.Equals) {
			continue
		}
		if c.Date != "" && e.date != nil && e.date(r) != c.Date {
			continue
		}
		out = append(out, r)
	}

	field, ok := e.sortable[c.SortBy]
	if !ok {
		return out
	}
	compare := field.comparator()
	if c.Order == Desc {
		slices.SortStableFunc(out, func(a, b T) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

func (e *Engine[T]) matchText(r T, needle string) bool {
	for _, field := range e.searchable {
		if strings.Contains(strings.ToLower(field(r)), needle) {
			return true
		}
	}
	return false
}

func (e *Engine[T]) matchCategories(r T, equals map[string]string) bool {
	for name, want := range equals {
		if want == "" || want == All {
			continue
		}
		field, ok := e.categorical[name]
		if !ok {
			continue
		}
		if field(r) != want {
			return false
		}
	}
	return true
}

func (f SortField[T]) comparator() func(a, b T) int {
	switch f.Kind {
	case Number:
		return func(a, b T) int { return cmp.Compare(f.Number(a), f.Number(b)) }
	case Time:
		return func(a, b T) int {
			return cmp.Compare(normalize.UnixMilli(f.Text(a)), normalize.UnixMilli(f.Text(b)))
		}
	default:
		return func(a, b T) int {
			return strings.Compare(strings.ToLower(f.Text(a)), strings.ToLower(f.Text(b)))
		}
	}
}
