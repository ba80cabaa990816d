package startpage

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// Orderable is implemented by every entity carrying an order value.
type Orderable[T any] interface {
	Service | Subcategory | Category
	key() string
	position() int
	withPosition(order int) T
}

func (s Service) key() string { return s.ID }

func (s Service) position() int { return s.Order }

func (s Service) withPosition(order int) Service {
	s.Order = order
	return s
}

func (s Subcategory) key() string { return s.ID }

func (s Subcategory) position() int { return s.Order }

func (s Subcategory) withPosition(order int) Subcategory {
	s.Order = order
	return s
}

func (c Category) key() string { return c.ID }

func (c Category) position() int { return c.Order }

func (c Category) withPosition(order int) Category {
	c.Order = order
	return c
}

// SortByOrder returns a copy sorted ascending by order. Ties keep their
// original relative sequence.
func SortByOrder[T Orderable[T]](items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(a.position(), b.position())
	})
	return out
}

// Renumber assigns dense zero-based orders in the current sequence.
func Renumber[T Orderable[T]](items []T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item.withPosition(i)
	}
	return out
}

// Move sorts items, splices movedID out of its slot into targetID's slot and
// renumbers the result. When the ids are equal, either id is unknown, or the
// list has fewer than two entries it returns items untouched and false.
func Move[T Orderable[T]](items []T, movedID, targetID string) ([]T, bool) {
	if movedID == targetID || len(items) < 2 {
		return items, false
	}
	sorted := SortByOrder(items)
	from := indexOf(sorted, movedID)
	to := indexOf(sorted, targetID)
	if from < 0 || to < 0 {
		return items, false
	}
	moved := sorted[from]
	sorted = slices.Delete(sorted, from, from+1)
	sorted = slices.Insert(sorted, to, moved)
	return Renumber(sorted), true
}

func indexOf[T Orderable[T]](items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return item.key() == id })
}

// mergeOrdered replaces the members of a scoped column inside all, keeping
// every entity outside the scope in place and appending the reordered ones.
func mergeOrdered[T Orderable[T]](all []T, reordered []T) []T {
	scope := make(map[string]struct{}, len(reordered))
	for _, item := range reordered {
		scope[item.key()] = struct{}{}
	}
	out := make([]T, 0, len(all))
	for _, item := range all {
		if _, ok := scope[item.key()]; !ok {
			out = append(out, item)
		}
	}
	return append(out, reordered...)
}

// arrangeWithin applies OrderByIDs to each sibling group separately so every
// group keeps dense orders. Groups stay in first-appearance sequence.
func arrangeWithin[T Orderable[T]](all []T, ids []string, group func(T) string) []T {
	keys := lo.Uniq(lo.Map(all, func(item T, _ int) string { return group(item) }))
	members := lo.GroupBy(all, group)
	out := make([]T, 0, len(all))
	for _, key := range keys {
		out = append(out, OrderByIDs(members[key], ids)...)
	}
	return out
}
