package dataset

import (
	"fmt"
	"slices"
)

// Search selects datasets in a collection. It is one of ByName, ByInstance or ByIndex.
type Search interface {
	// resolve returns, per query element, whether it matched and its position (-1 if not).
	resolve(c *Collection) (found []bool, index []int)
	// identifier names query element i for error messages.
	identifier(i int) string
}

// ByName matches datasets by exact name.
type ByName []string

// ByInstance matches datasets by identity.
type ByInstance []*Dataset

// ByIndex addresses datasets by 0-based position.
type ByIndex []int

var (
	_ Search = ByName(nil)
	_ Search = ByInstance(nil)
	_ Search = ByIndex(nil)
)

func (s ByName) resolve(c *Collection) ([]bool, []int) {
	found := make([]bool, len(s))
	index := make([]int, len(s))
	for i, name := range s {
		pos, ok := c.index[name]
		found[i] = ok
		index[i] = -1
		if ok {
			index[i] = pos
		}
	}
	return found, index
}

func (s ByName) identifier(i int) string { return s[i] }

func (s ByInstance) resolve(c *Collection) ([]bool, []int) {
	found := make([]bool, len(s))
	index := make([]int, len(s))
	for i, ds := range s {
		index[i] = slices.Index(c.datasets, ds)
		found[i] = ds != nil && index[i] >= 0
	}
	return found, index
}

func (s ByInstance) identifier(i int) string {
	if s[i] == nil {
		return "<nil>"
	}
	return s[i].name
}

// resolve reports every index as present; range is checked by FindDataset.
func (s ByIndex) resolve(*Collection) ([]bool, []int) {
	found := make([]bool, len(s))
	index := make([]int, len(s))
	for i, pos := range s {
		found[i] = true
		index[i] = pos
	}
	return found, index
}

func (s ByIndex) identifier(i int) string { return fmt.Sprintf("#%d", s[i]) }

// IsMember reports, per query element, whether it is in the collection and at
// which position. Unmatched elements have index -1.
func (c *Collection) IsMember(search Search) (found []bool, index []int) {
	if search == nil {
		return []bool{}, []int{}
	}
	return search.resolve(c)
}

// FindDataset resolves every query element to a dataset, in query order.
// Returns a *NotFoundError listing every element that did not resolve.
func (c *Collection) FindDataset(search Search) ([]*Dataset, error) {
	if search == nil {
		return []*Dataset{}, nil
	}
	found, index := search.resolve(c)

	result := make([]*Dataset, 0, len(index))
	var missing []string
	for i := range index {
		if !found[i] || index[i] < 0 || index[i] >= len(c.datasets) {
			missing = append(missing, search.identifier(i))
			continue
		}
		result = append(result, c.datasets[index[i]])
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Identifiers: missing}
	}
	return result, nil
}

// MatchDatasetsByName resolves names to datasets, in the given order.
// Returns a *NotFoundError listing every absent name.
func (c *Collection) MatchDatasetsByName(names ...string) ([]*Dataset, error) {
	return c.FindDataset(ByName(names))
}
