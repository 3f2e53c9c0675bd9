package stats

import "testing"

func TestBuildBestPlotShortHistoryPassesThrough(t *testing.T) {
	history := testHistory(4)
	points := BuildBestPlot(history, 10)
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	for i, point := range points {
		if point.Generation != i || point.Value != history[i].Best {
			t.Fatalf("point %d mismatch: %+v", i, point)
		}
	}
}

func TestBuildBestPlotDownsamples(t *testing.T) {
	history := testHistory(10)
	// Make generation 7 the standout in its bucket.
	history[7].Best = 100

	points := BuildBestPlot(history, 5)
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	found := false
	for _, point := range points {
		if point.Generation == 7 && point.Value == 100 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected bucket max at generation 7, got %+v", points)
	}
}

func TestBuildBestPlotEmptyHistory(t *testing.T) {
	if points := BuildBestPlot(nil, 5); len(points) != 0 {
		t.Fatalf("expected no points, got %d", len(points))
	}
}

func TestBuildMeanPlotAveragesBuckets(t *testing.T) {
	history := testHistory(6)
	points := BuildMeanPlot(history, 3)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	// Means run 0..5, so buckets of two average to 0.5, 2.5, 4.5.
	want := []float64{0.5, 2.5, 4.5}
	for i, point := range points {
		if point.Value != want[i] {
			t.Fatalf("bucket %d mean is %g, want %g", i, point.Value, want[i])
		}
		if point.Generation != i*2 {
			t.Fatalf("bucket %d stamped with generation %d, want %d", i, point.Generation, i*2)
		}
	}
}
