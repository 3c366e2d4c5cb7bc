package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/stokku/inventory-service/internal/model"
)

// Holt smoothing constants. Fixed rather than fitted: demand histories here
// are short and noisy, and stable constants keep the forecast deterministic.
const (
	levelAlpha = 0.3
	trendBeta  = 0.1
)

var zScores = map[float64]float64{
	0.90: 1.645,
	0.95: 1.96,
	0.99: 2.576,
}

const defaultZScore = 1.96

func zScore(confidence float64) float64 {
	if z, ok := zScores[confidence]; ok {
		return z
	}
	return defaultZScore
}

// dailySeries collapses movements into per-day demand magnitudes, ordered by
// day. Days without movements are absent, not zero-filled.
func dailySeries(movements []model.StockMovement) []float64 {
	totals := make(map[string]int64)
	for i := range movements {
		day := movements[i].CreatedAt.UTC().Format("2006-01-02")
		totals[day] += movements[i].Magnitude()
	}

	days := make([]string, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]float64, len(days))
	for i, day := range days {
		series[i] = float64(totals[day])
	}
	return series
}

// holt runs double exponential smoothing over the series and returns the
// final level and trend estimates.
func holt(series []float64) (level, trend float64) {
	if len(series) == 0 {
		return 0, 0
	}
	level = series[0]
	trend = 0
	for _, x := range series[1:] {
		prevLevel := level
		level = levelAlpha*x + (1-levelAlpha)*(level+trend)
		trend = trendBeta*(level-prevLevel) + (1-trendBeta)*trend
	}
	return level, trend
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, x := range series {
		sum += x
	}
	return sum / float64(len(series))
}

// popStdDev is the population standard deviation of the series.
func popStdDev(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	m := mean(series)
	var sum float64
	for _, x := range series {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(series)))
}

// normalCDF is the closed-form logistic approximation of the standard
// normal CDF.
func normalCDF(x float64) float64 {
	return 1 / (1 + math.Exp(-1.702*x))
}

func daysAgo(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
