package search

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type SortField string

const (
	SortByName    SortField = "name"
	SortByCreated SortField = "created"
	SortByUpdated SortField = "updated"
)

// Order selects the sort applied after filtering. The zero value keeps
// store enumeration order.
type Order struct {
	Field SortField
	Desc  bool
}

// ParseOrder reads a field name and direction ("asc" or "desc").
func ParseOrder(field, direction string) (Order, error) {
	o := Order{Field: SortField(strings.ToLower(field))}
	switch o.Field {
	case "", SortByName, SortByCreated, SortByUpdated:
	default:
		return Order{}, fmt.Errorf("unknown sort field %q", field)
	}

	switch strings.ToLower(direction) {
	case "", "asc":
	case "desc":
		o.Desc = true
	default:
		return Order{}, fmt.Errorf("unknown sort direction %q", direction)
	}
	return o, nil
}

// Keys are the sortable attributes of an item.
type Keys struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sort orders items in place. Ties keep their enumeration order.
func Sort[T any](items []T, order Order, keys func(T) Keys) {
	if order.Field == "" {
		return
	}

	slices.SortStableFunc(items, func(a, b T) int {
		ka, kb := keys(a), keys(b)
		var c int
		switch order.Field {
		case SortByName:
			c = strings.Compare(Normalize(ka.Name), Normalize(kb.Name))
		case SortByCreated:
			c = ka.CreatedAt.Compare(kb.CreatedAt)
		case SortByUpdated:
			c = ka.UpdatedAt.Compare(kb.UpdatedAt)
		}
		if order.Desc {
			return -c
		}
		return c
	})
}
