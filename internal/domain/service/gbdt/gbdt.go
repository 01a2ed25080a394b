// Package gbdt evaluates an exported gradient-boosted decision tree
// ensemble. Pure computation: the only I/O is Load reading the artifact.
package gbdt

import (
	"fmt"
	"math"
	"time"
)

// The 97.5 percentile point of the standard normal distribution, for a
// two-sided 95% interval.
const z95 = 1.96

type Model struct {
	artifact Artifact
}

// Version of the loaded artifact.
func (m *Model) Version() string {
	return m.artifact.Version
}

// TrainedAt timestamp of the loaded artifact.
func (m *Model) TrainedAt() time.Time {
	return m.artifact.TrainedAt
}

// Features returns the feature names in model input order.
func (m *Model) Features() []string {
	out := make([]string, len(m.artifact.Features))
	copy(out, m.artifact.Features)
	return out
}

// RMSE is the residual error of the model on the validation set, dollars.
func (m *Model) RMSE() float64 {
	return m.artifact.RMSE
}

// TreeCount is the ensemble size.
func (m *Model) TreeCount() int {
	return len(m.artifact.Trees)
}

// NeighborhoodBaseline returns the training-time median price of the
// neighborhood in dollars, falling back to the global median.
func (m *Model) NeighborhoodBaseline(code string) (float64, bool) {
	if v, ok := m.artifact.NeighborhoodBaselines[code]; ok {
		return v, true
	}
	return m.artifact.GlobalMedian, false
}

// GlobalMedian is the training-time median sale price across the whole
// dataset, dollars.
func (m *Model) GlobalMedian() float64 {
	return m.artifact.GlobalMedian
}

// Predict scores one feature vector and returns the estimated price in
// dollars. The vector must be in artifact feature order; NaN marks a
// missing value and follows each node's default branch.
func (m *Model) Predict(vector []float64) (float64, error) {
	if len(vector) != len(m.artifact.Features) {
		return 0, fmt.Errorf("feature vector length %d, model expects %d", len(vector), len(m.artifact.Features))
	}

	sum := m.artifact.BaseScore

	for i := range m.artifact.Trees {
		leaf, err := m.evalTree(&m.artifact.Trees[i], vector)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += leaf
	}

	if sum < 0 {
		sum = 0
	}

	return sum, nil
}

// IntervalWidth is the half-width of the 95% confidence interval, dollars.
func (m *Model) IntervalWidth() float64 {
	return z95 * m.artifact.RMSE
}

func (m *Model) evalTree(tree *Tree, vector []float64) (float64, error) {
	idx := 0

	// A well-formed tree terminates well before len(nodes) hops; the bound
	// guards against cycles in a hand-edited artifact.
	for hops := 0; hops <= len(tree.Nodes); hops++ {
		node := &tree.Nodes[idx]

		if node.IsLeaf {
			return node.Leaf, nil
		}

		v := vector[node.Feature]

		switch {
		case math.IsNaN(v):
			if node.DefaultLeft {
				idx = node.Left
			} else {
				idx = node.Right
			}
		case v < node.Threshold:
			idx = node.Left
		default:
			idx = node.Right
		}
	}

	return 0, fmt.Errorf("no leaf reached after %d hops", len(tree.Nodes))
}
