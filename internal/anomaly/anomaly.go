package anomaly

import (
	"math"
	"sort"

	"github.com/Alias1177/dexwatch/models"
)

// Default scorer tuning. Contamination is the expected share of the
// population flagged as outliers; MinSamples keeps the model from fitting
// on a population too small to define "normal".
const (
	DefaultContamination = 0.1
	DefaultMinSamples    = 10
	defaultScoreFloor    = 2.5
)

// featureCount is fixed: (price_change_24h_pct, volume_24h, liquidity_usd).
const featureCount = 3

// Scorer flags the statistically most extreme snapshots in a population.
// It is a relative model: the same snapshot can flip between normal and
// anomalous purely because the rest of the population changed, so results
// are recomputed fresh on every pass and never cached.
type Scorer struct {
	// Contamination is the fraction of the population to flag.
	Contamination float64
	// MinSamples is the minimum population size to score at all; below
	// it the scorer returns an empty result.
	MinSamples int
	// ScoreFloor is the minimum robust distance a flagged snapshot must
	// reach, so a homogeneous population produces no anomalies.
	ScoreFloor float64
}

// NewScorer returns a scorer with the default tuning.
func NewScorer() *Scorer {
	return &Scorer{
		Contamination: DefaultContamination,
		MinSamples:    DefaultMinSamples,
		ScoreFloor:    defaultScoreFloor,
	}
}

// Score fits a robust outlier model over the full population and returns
// the flagged subset, highest score first. An empty population is
// models.ErrInsufficientData; a population below MinSamples is an empty
// result, not an error.
func (s *Scorer) Score(snapshots []models.Snapshot) ([]models.AnomalyRecord, error) {
	if len(snapshots) == 0 {
		return nil, models.ErrInsufficientData
	}
	if len(snapshots) < s.minSamples() {
		return nil, nil
	}

	features := make([][featureCount]float64, len(snapshots))
	for i, snap := range snapshots {
		features[i] = [featureCount]float64{snap.PriceChange24h, snap.Volume24h, snap.LiquidityUSD}
	}

	// Per-feature robust z-scores via median/MAD; the combined score is
	// the euclidean norm over the three dimensions.
	scores := make([]float64, len(snapshots))
	for dim := 0; dim < featureCount; dim++ {
		column := make([]float64, len(features))
		for i := range features {
			column[i] = features[i][dim]
		}

		med := median(column)
		scale := mad(column, med)
		if scale == 0 {
			// Majority-constant feature: fall back to the mean absolute
			// deviation so lone outliers still register.
			scale = meanAbsDeviation(column, med)
		}
		if scale == 0 {
			// Constant feature: no snapshot deviates on this dimension.
			continue
		}

		for i := range features {
			z := (features[i][dim] - med) / scale
			scores[i] += z * z
		}
	}
	for i := range scores {
		scores[i] = math.Sqrt(scores[i])
	}

	// Flag the top contamination fraction, provided they clear the floor.
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return snapshots[order[a]].PairAddress < snapshots[order[b]].PairAddress
	})

	budget := int(math.Ceil(s.contamination() * float64(len(snapshots))))

	var anomalies []models.AnomalyRecord
	for _, idx := range order[:budget] {
		if scores[idx] < s.scoreFloor() {
			break
		}
		anomalies = append(anomalies, models.AnomalyRecord{
			Snapshot:     snapshots[idx],
			AnomalyScore: scores[idx],
		})
	}

	return anomalies, nil
}

func (s *Scorer) contamination() float64 {
	if s.Contamination <= 0 || s.Contamination >= 1 {
		return DefaultContamination
	}
	return s.Contamination
}

func (s *Scorer) minSamples() int {
	if s.MinSamples <= 0 {
		return DefaultMinSamples
	}
	return s.MinSamples
}

func (s *Scorer) scoreFloor() float64 {
	if s.ScoreFloor <= 0 {
		return defaultScoreFloor
	}
	return s.ScoreFloor
}

// median returns the middle value of the column.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// meanAbsDeviation returns the average absolute distance from the median.
func meanAbsDeviation(values []float64, med float64) float64 {
	var sum float64
	for _, v := range values {
		sum += math.Abs(v - med)
	}
	return sum / float64(len(values))
}

// mad returns the median absolute deviation scaled to be consistent with
// the standard deviation of a normal distribution.
func mad(values []float64, med float64) float64 {
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - med)
	}
	return 1.4826 * median(deviations)
}
