package differ

// Membership marks which lines of each sequence belong to the chosen
// longest common subsequence. len(A) and len(B) equal the input lengths.
type Membership struct {
	A []bool
	B []bool
}

// ComputeMembership finds a longest common subsequence of a and b and reports
// which indices of each sequence take part in it.
//
// Lines are compared with exact string equality. When backtracking meets two
// equally good moves it prefers stepping back in a, which fixes the alignment
// chosen among several valid ones.
func ComputeMembership(a, b []string) Membership {
	m, n := len(a), len(b)
	cols := n + 1
	table := make([]int, (m+1)*cols)

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				table[i*cols+j] = table[(i-1)*cols+j-1] + 1
			} else {
				table[i*cols+j] = max(table[(i-1)*cols+j], table[i*cols+j-1])
			}
		}
	}

	mem := Membership{A: make([]bool, m), B: make([]bool, n)}
	i, j := m, n
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			mem.A[i-1] = true
			mem.B[j-1] = true
			i--
			j--
		case table[(i-1)*cols+j] >= table[i*cols+j-1]:
			i--
		default:
			j--
		}
	}
	return mem
}

// Len returns the length of the common subsequence.
func (m Membership) Len() int {
	n := 0
	for _, in := range m.A {
		if in {
			n++
		}
	}
	return n
}
