package gbdt

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"home_pricer/internal/domain"
	"home_pricer/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// Node is one decision node of a regression tree. Leaves keep the response
// value in Leaf; internal nodes route on Feature vs Threshold, with
// DefaultLeft deciding where a missing (NaN) feature goes.
type Node struct {
	Feature     int     `json:"feature"`
	Threshold   float64 `json:"threshold"`
	Left        int     `json:"left"`
	Right       int     `json:"right"`
	DefaultLeft bool    `json:"default_left"`
	IsLeaf      bool    `json:"is_leaf"`
	Leaf        float64 `json:"leaf"`
}

// Tree is a single regression tree, nodes indexed from the root at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Artifact is the exported gradient-boosted ensemble as produced by the
// offline training pipeline. Prices inside the artifact are in dollars,
// matching the training data.
type Artifact struct {
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	BaseScore float64   `json:"base_score"`
	RMSE      float64   `json:"rmse"`
	Features  []string  `json:"features"`
	Trees     []Tree    `json:"trees"`

	// NeighborhoodBaselines are median sale prices per neighborhood at
	// training time: target encoding fallback and drift baseline.
	NeighborhoodBaselines map[string]float64 `json:"neighborhood_baselines"`
	GlobalMedian          float64            `json:"global_median"`
}

// Load reads and validates a model artifact from disk.
func Load(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.ModelNotReady, "failed to read model artifact")
	}

	var artifact Artifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, domain.WrapError(err, errcodes.ModelArtifactBroken, "failed to decode model artifact")
	}

	if err := artifact.validate(); err != nil {
		return nil, domain.WrapError(err, errcodes.ModelArtifactBroken, "invalid model artifact")
	}

	return &Model{artifact: artifact}, nil
}

// New builds a model from an in-memory artifact. Used by tests and by
// anything that obtains the artifact some other way than a file.
func New(artifact Artifact) (*Model, error) {
	if err := artifact.validate(); err != nil {
		return nil, domain.WrapError(err, errcodes.ModelArtifactBroken, "invalid model artifact")
	}

	return &Model{artifact: artifact}, nil
}

func (a Artifact) validate() error {
	if a.Version == "" {
		return fmt.Errorf("version is empty")
	}

	if len(a.Features) == 0 {
		return fmt.Errorf("feature list is empty")
	}

	if len(a.Trees) == 0 {
		return fmt.Errorf("ensemble has no trees")
	}

	if a.RMSE < 0 {
		return fmt.Errorf("rmse is negative: %v", a.RMSE)
	}

	for ti, tree := range a.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}

		for ni, node := range tree.Nodes {
			if node.IsLeaf {
				continue
			}

			if node.Feature < 0 || node.Feature >= len(a.Features) {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, node.Feature)
			}

			if node.Left < 0 || node.Left >= len(tree.Nodes) ||
				node.Right < 0 || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}

			if node.Left == ni || node.Right == ni {
				return fmt.Errorf("tree %d node %d: node references itself", ti, ni)
			}
		}
	}

	return nil
}
