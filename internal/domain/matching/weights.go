package matching

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrInvalidWeights = errors.New("invalid weight table")

// WeightTable maps each dimension scored for a candidate kind to its weight.
type WeightTable map[Dimension]float64

type Weights struct {
	Job      WeightTable `yaml:"job"`
	Resource WeightTable `yaml:"resource"`
}

func DefaultWeights() Weights {
	return Weights{
		Job: WeightTable{
			DimensionSkills:     0.45,
			DimensionExperience: 0.15,
			DimensionLocation:   0.15,
			DimensionSalary:     0.10,
			DimensionCategory:   0.05,
			DimensionRecency:    0.10,
		},
		Resource: WeightTable{
			DimensionSkills:     0.70,
			DimensionCategory:   0.15,
			DimensionExperience: 0.15,
		},
	}
}

func (w Weights) For(kind Kind) WeightTable {
	if kind == KindResource {
		return w.Resource
	}
	return w.Job
}

// Dimensions returns the table's dimensions in fixed order.
func (t WeightTable) Dimensions() []Dimension {
	out := make([]Dimension, 0, len(t))
	for d := range t {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return dimensionOrder[out[i]] < dimensionOrder[out[j]] })
	return out
}

func (t WeightTable) validate(kind Kind) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: %s table is empty", ErrInvalidWeights, kind)
	}
	sum := 0.0
	for d, v := range t {
		if _, ok := dimensionOrder[d]; !ok || d == DimensionKeyword {
			return fmt.Errorf("%w: %s table has unknown dimension %q", ErrInvalidWeights, kind, d)
		}
		if kind == KindResource && d != DimensionSkills && d != DimensionCategory && d != DimensionExperience {
			return fmt.Errorf("%w: dimension %q is not scored for resources", ErrInvalidWeights, d)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s.%s is negative", ErrInvalidWeights, kind, d)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("%w: %s weights sum to %.4f, want 1.0", ErrInvalidWeights, kind, sum)
	}
	return nil
}

func (w Weights) Validate() error {
	if err := w.Job.validate(KindJob); err != nil {
		return err
	}
	return w.Resource.validate(KindResource)
}

// LoadWeights reads a YAML override of the weight tables. An empty path keeps
// the defaults; a table missing from the file keeps its default.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read weights: %w", err)
	}

	var override Weights
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Weights{}, fmt.Errorf("parse weights: %w", err)
	}
	if len(override.Job) > 0 {
		w.Job = override.Job
	}
	if len(override.Resource) > 0 {
		w.Resource = override.Resource
	}

	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}
