package attune

import (
	"math"
	"sort"
	"time"
)

// Correlation classification thresholds.
const (
	// correlationDeadZone is the band around zero classified as neutral.
	// Strictly exclusive: a coefficient of exactly ±0.2 is still neutral.
	correlationDeadZone = 0.2

	// minCorrelationSamples is the minimum number of paired points before a
	// factor is reported at all. Below it the factor is omitted, not
	// reported as neutral.
	minCorrelationSamples = 3
)

// CorrelationResult reports one health factor's relationship with mood.
type CorrelationResult struct {
	Factor      string  `json:"factor"`
	Correlation string  `json:"correlation"` // positive, negative, neutral
	Strength    float64 `json:"strength"`    // absolute Pearson coefficient
	Insight     string  `json:"insight"`
}

// Pearson computes the product-moment correlation coefficient of x and y.
// It returns 0.0 for empty input or when either sequence has zero variance
// (degenerate denominator). Inputs are assumed paired and equal length.
func Pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0.0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 {
		return 0.0
	}
	return numerator / denominator
}

// classifyCorrelation buckets a coefficient by sign with a dead zone.
func classifyCorrelation(r float64) string {
	switch {
	case r > correlationDeadZone:
		return "positive"
	case r < -correlationDeadZone:
		return "negative"
	default:
		return "neutral"
	}
}

// EmotionBreakdown returns each primary emotion's share of the entries as a
// percentage rounded to one decimal. Shares sum to 100 across labels; an
// empty entry set yields an empty map.
func EmotionBreakdown(entries []*Entry) map[string]float64 {
	if len(entries) == 0 {
		return map[string]float64{}
	}

	counts := make(map[string]int)
	for _, e := range entries {
		emotion := e.Emotion
		if emotion == "" {
			emotion = "neutral"
		}
		counts[emotion]++
	}

	total := float64(len(entries))
	breakdown := make(map[string]float64, len(counts))
	for emotion, count := range counts {
		breakdown[emotion] = math.Round(float64(count)/total*1000) / 10
	}
	return breakdown
}

// ThemeBreakdown returns raw theme mention counts, stable-sorted by
// descending count.
func ThemeBreakdown(entries []*Entry) []ThemeCount {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		for _, theme := range e.Themes {
			if counts[theme] == 0 {
				order = append(order, theme)
			}
			counts[theme]++
		}
	}

	result := make([]ThemeCount, 0, len(order))
	for _, theme := range order {
		result = append(result, ThemeCount{Theme: theme, Count: counts[theme]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// healthFactor describes one correlatable health metric.
type healthFactor struct {
	name            string
	value           func(*HealthRecord) (float64, bool)
	strongInsight   string
	moderateInsight string
}

var healthFactors = []healthFactor{
	{
		name: "Sleep Quality",
		value: func(h *HealthRecord) (float64, bool) {
			if h.Sleep != nil {
				return h.Sleep.Quality, true
			}
			return 0, false
		},
		strongInsight:   "Better sleep appears to boost your mood",
		moderateInsight: "Sleep quality has a moderate relationship with your mood",
	},
	{
		name: "Physical Activity",
		value: func(h *HealthRecord) (float64, bool) {
			if h.Activity != nil {
				return h.Activity.ActiveMinutes, true
			}
			return 0, false
		},
		strongInsight:   "Movement seems to lift your spirits",
		moderateInsight: "Physical activity has some effect on your mood",
	},
	{
		name: "Heart Rate Variability",
		value: func(h *HealthRecord) (float64, bool) {
			return h.HRV()
		},
		strongInsight:   "Higher HRV days correlate with better moods",
		moderateInsight: "Your HRV shows interesting patterns with your emotional state",
	},
}

// HealthCorrelations pairs each health factor with daily mean entry
// sentiment and reports the factors that have at least
// minCorrelationSamples matched days.
func HealthCorrelations(entries []*Entry, health []*HealthRecord) []CorrelationResult {
	sentimentByDay := make(map[string][]float64)
	for _, e := range entries {
		day := dayKey(e.CreatedAt)
		sentimentByDay[day] = append(sentimentByDay[day], e.Sentiment)
	}
	meanByDay := make(map[string]float64, len(sentimentByDay))
	for day, scores := range sentimentByDay {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		meanByDay[day] = sum / float64(len(scores))
	}

	var results []CorrelationResult
	for _, factor := range healthFactors {
		var xs, ys []float64
		for _, h := range health {
			value, ok := factor.value(h)
			if !ok {
				continue
			}
			mood, ok := meanByDay[dayKey(h.Date)]
			if !ok {
				continue
			}
			xs = append(xs, value)
			ys = append(ys, mood)
		}
		if len(xs) < minCorrelationSamples {
			continue
		}

		r := Pearson(xs, ys)
		insight := factor.moderateInsight
		if r > 0.3 {
			insight = factor.strongInsight
		}
		results = append(results, CorrelationResult{
			Factor:      factor.name,
			Correlation: classifyCorrelation(r),
			Strength:    math.Abs(r),
			Insight:     insight,
		})
	}
	return results
}

// dayKey formats a time as its UTC calendar day.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
