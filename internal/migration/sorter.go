package migration

import "sort"

// Sort returns a new slice of migrations sorted by Filename in byte-wise
// ascending order. Lexicographic filename order is the sole apply-order
// guarantee; callers name files so that it matches the intended order.
func Sort(migrations []Migration) []Migration {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Filename < sorted[j].Filename
	})

	return sorted
}
