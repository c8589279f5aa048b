package builder

import "github.com/vk/weavego/internal/registry"

// OpKind classifies one step of a reconciliation.
type OpKind int

const (
	Keep OpKind = iota
	Remove
	Insert
)

// String returns the op name.
func (k OpKind) String() string {
	switch k {
	case Keep:
		return "keep"
	case Remove:
		return "remove"
	case Insert:
		return "insert"
	default:
		return "unknown"
	}
}

// Op is one reconciliation step. Old indexes the previous list (Keep,
// Remove) and New the fresh list (Keep, Insert); the unused index is -1.
type Op struct {
	Kind OpKind
	Old  int
	New  int
}

// SameItem reports whether two structural results render the same element:
// equal scopes and structurally equal templates.
func SameItem(a, b registry.Item) bool {
	return a.Scope.Equal(b.Scope) && a.Template.Equal(b.Template)
}

// Reconcile classifies the previous items against the fresh ones.
func Reconcile(previous, fresh []registry.Item) []Op {
	return Diff(len(previous), len(fresh), func(i, j int) bool {
		return SameItem(previous[i], fresh[j])
	})
}

// Diff computes a shortest edit script between a list of n old and m new
// elements from a longest common subsequence under eq. Ops come out in
// left-to-right order; at a tie removals come before insertions.
func Diff(n, m int, eq func(i, j int) bool) []Op {
	// lcs[i][j] is the LCS length of old[i:] and new[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	same := make([][]bool, n)
	for i := n - 1; i >= 0; i-- {
		same[i] = make([]bool, m)
		for j := m - 1; j >= 0; j-- {
			if eq(i, j) {
				same[i][j] = true
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]Op, 0, n+m)
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && same[i][j]:
			ops = append(ops, Op{Kind: Keep, Old: i, New: j})
			i++
			j++
		case i < n && (j == m || lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, Op{Kind: Remove, Old: i, New: -1})
			i++
		default:
			ops = append(ops, Op{Kind: Insert, Old: -1, New: j})
			j++
		}
	}
	return ops
}
