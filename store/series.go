package store

import "git.sr.ht/~whereswaldon/chomp/chart"

// SeriesOf converts stored measurements into a chart series.
func SeriesOf(weights []Weight) chart.DataSeries {
	points := make([]chart.DataPoint, len(weights))
	for i, w := range weights {
		points[i] = chart.DataPoint{Day: w.Day, Value: w.Weight}
	}
	return chart.FromSamples(points)
}
