package align

import "math"

type step uint8

const (
	stepNone step = iota
	stepDiag
	stepUp
	stepLeft
)

// program describes one edit-distance alignment of m rows against n columns.
type program struct {
	m, n int
	// sub prices pairing row i with column j; +Inf forbids it
	sub        func(i, j int) float64
	deleteCost float64
	insertCost float64
	// emit decides whether a diagonal step becomes a path pair
	emit func(i, j int) bool
}

// solve fills the (m+1)x(n+1) table and backtracks from (m,n).
// It returns the diagonal pairs in increasing order and dp[m][n].
func (p program) solve() ([][2]int, float64) {
	dp := make([][]float64, p.m+1)
	back := make([][]step, p.m+1)
	for i := range dp {
		dp[i] = make([]float64, p.n+1)
		back[i] = make([]step, p.n+1)
	}

	for i := 1; i <= p.m; i++ {
		dp[i][0] = dp[i-1][0] + p.deleteCost
		back[i][0] = stepUp
	}
	for j := 1; j <= p.n; j++ {
		dp[0][j] = dp[0][j-1] + p.insertCost
		back[0][j] = stepLeft
	}

	for i := 1; i <= p.m; i++ {
		for j := 1; j <= p.n; j++ {
			best := dp[i-1][j-1] + p.sub(i-1, j-1)
			choice := stepDiag
			if up := dp[i-1][j] + p.deleteCost; up < best {
				best, choice = up, stepUp
			}
			if left := dp[i][j-1] + p.insertCost; left < best {
				best, choice = left, stepLeft
			}
			dp[i][j] = best
			back[i][j] = choice
		}
	}

	var pairs [][2]int
	i, j := p.m, p.n
	for i > 0 || j > 0 {
		switch back[i][j] {
		case stepDiag:
			if p.emit == nil || p.emit(i-1, j-1) {
				pairs = append(pairs, [2]int{i - 1, j - 1})
			}
			i--
			j--
		case stepUp:
			i--
		case stepLeft:
			j--
		default:
			i, j = 0, 0
		}
	}
	for l, r := 0, len(pairs)-1; l < r; l, r = l+1, r-1 {
		pairs[l], pairs[r] = pairs[r], pairs[l]
	}
	return pairs, dp[p.m][p.n]
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
