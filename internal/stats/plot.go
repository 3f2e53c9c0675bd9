package stats

import (
	"gonum.org/v1/gonum/stat"

	"github.com/cjburkey01/fafevosim/internal/evo"
)

// HistoryPlotPoint is one downsampled point of a fitness curve.
type HistoryPlotPoint struct {
	Generation int     `json:"generation"`
	Value      float64 `json:"value"`
}

// BuildBestPlot compresses a history to at most maxPoints points by taking
// the best fitness over equal-width generation buckets. Histories already
// within the budget come back one point per generation.
func BuildBestPlot(history []evo.GenerationStats, maxPoints int) []HistoryPlotPoint {
	if len(history) == 0 {
		return []HistoryPlotPoint{}
	}
	if maxPoints <= 0 || maxPoints >= len(history) {
		points := make([]HistoryPlotPoint, 0, len(history))
		for _, entry := range history {
			points = append(points, HistoryPlotPoint{Generation: entry.Generation, Value: entry.Best})
		}
		return points
	}

	bucket := (len(history) + maxPoints - 1) / maxPoints
	points := make([]HistoryPlotPoint, 0, maxPoints)
	for start := 0; start < len(history); start += bucket {
		end := start + bucket
		if end > len(history) {
			end = len(history)
		}
		best := history[start]
		for _, entry := range history[start+1 : end] {
			if entry.Best > best.Best {
				best = entry
			}
		}
		points = append(points, HistoryPlotPoint{Generation: best.Generation, Value: best.Best})
	}
	return points
}

// BuildMeanPlot is the mean-fitness companion of BuildBestPlot: each bucket
// collapses to the average of its generation means, stamped with the
// bucket's first generation.
func BuildMeanPlot(history []evo.GenerationStats, maxPoints int) []HistoryPlotPoint {
	if len(history) == 0 {
		return []HistoryPlotPoint{}
	}
	if maxPoints <= 0 || maxPoints >= len(history) {
		points := make([]HistoryPlotPoint, 0, len(history))
		for _, entry := range history {
			points = append(points, HistoryPlotPoint{Generation: entry.Generation, Value: entry.Mean})
		}
		return points
	}

	bucket := (len(history) + maxPoints - 1) / maxPoints
	points := make([]HistoryPlotPoint, 0, maxPoints)
	for start := 0; start < len(history); start += bucket {
		end := start + bucket
		if end > len(history) {
			end = len(history)
		}
		values := make([]float64, 0, end-start)
		for _, entry := range history[start:end] {
			values = append(values, entry.Mean)
		}
		points = append(points, HistoryPlotPoint{
			Generation: history[start].Generation,
			Value:      stat.Mean(values, nil),
		})
	}
	return points
}
