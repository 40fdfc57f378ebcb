package attune

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zoobzio/capitan"
)

// Summary is the period-level narrative produced by the pattern summarizer.
type Summary struct {
	PrimaryPattern       string   `json:"primary_pattern"`
	EmotionTrend         string   `json:"emotion_trend"` // increasing, decreasing, stable, mixed, unknown
	Insights             []string `json:"insights"`
	HealthConnections    []string `json:"health_connections"`
	SuggestedFocus       string   `json:"suggested_focus,omitempty"`
	CarryForwardQuestion string   `json:"carry_forward_question"`
}

// maxSummaryInsights caps the insight list carried forward from the model.
const maxSummaryInsights = 3

const patternSystemPrompt = `You are a pattern discovery agent analyzing emotional journal data.

Your role:
- Identify emotional trends over time
- Find correlations between themes and emotions
- Generate plain-English insights that are helpful but not prescriptive
- Notice patterns the user might miss
- Connect health data to emotional states when available

Guidelines:
- Keep insights brief and actionable
- Use "I noticed" language, not "You should"
- Focus on patterns, not diagnoses
- Maximum 3 insights per analysis

Output JSON format:
{
    "primary_pattern": "Brief description of the main pattern observed",
    "emotion_trend": "increasing/decreasing/stable/mixed",
    "insights": [
        "First insight in plain English",
        "Second insight..."
    ],
    "health_connections": ["Any patterns connecting health data to emotions"],
    "suggested_focus": "One gentle suggestion for the coming week",
    "carry_forward_question": "A question to revisit next week"
}

Be observational, not prescriptive.`

// PatternSummarizer aggregates entries and optional health data into a
// period-level narrative summary.
type PatternSummarizer struct {
	model     LanguageModel
	maxTokens int
}

// NewPatternSummarizer creates a summarizer bound to the given model.
func NewPatternSummarizer(model LanguageModel) *PatternSummarizer {
	return &PatternSummarizer{
		model:     model,
		maxTokens: DefaultSummaryTokens,
	}
}

// WithMaxTokens sets the output token budget for summary calls.
func (p *PatternSummarizer) WithMaxTokens(n int) *PatternSummarizer {
	p.maxTokens = n
	return p
}

// Summarize produces a narrative summary for the period. With no entries it
// returns the canonical no-data summary without a model call. On model or
// parse failure it returns a deterministic summary derived from the entries.
func (p *PatternSummarizer) Summarize(ctx context.Context, entries []*Entry, health []*HealthRecord, period Period) Summary {
	if len(entries) == 0 {
		return emptySummary()
	}

	userMessage := buildDigest(entries, health, period)
	raw, err := p.model.Generate(ctx, patternSystemPrompt, userMessage, p.maxTokens)
	if err != nil {
		return p.fallback(ctx, entries, err)
	}

	var parsed Summary
	if err := ExtractObject(raw, &parsed); err != nil {
		return p.fallback(ctx, entries, err)
	}

	if parsed.PrimaryPattern == "" {
		parsed.PrimaryPattern = "No clear pattern detected"
	}
	if parsed.EmotionTrend == "" {
		parsed.EmotionTrend = "mixed"
	}
	if len(parsed.Insights) > maxSummaryInsights {
		parsed.Insights = parsed.Insights[:maxSummaryInsights]
	}
	if parsed.Insights == nil {
		parsed.Insights = []string{}
	}
	if parsed.HealthConnections == nil {
		parsed.HealthConnections = []string{}
	}
	if parsed.CarryForwardQuestion == "" {
		parsed.CarryForwardQuestion = "How has your week been?"
	}
	return parsed
}

// buildDigest renders entries and health data into the textual digest sent
// to the model.
func buildDigest(entries []*Entry, health []*HealthRecord, period Period) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s journal data for patterns:\n\n", period)
	fmt.Fprintf(&b, "Total entries: %d\n\n", len(entries))

	b.WriteString("Emotion breakdown:\n")
	b.WriteString(digestEmotions(entries))
	b.WriteString("\nTheme frequency:\n")
	b.WriteString(digestThemes(entries))

	b.WriteString("\nSample entries (abbreviated):\n")
	samples := entries
	if len(samples) > 5 {
		samples = samples[:5]
	}
	for _, e := range samples {
		emotion := e.Emotion
		if emotion == "" {
			emotion = "unknown"
		}
		fmt.Fprintf(&b, "- [%s] %q\n", emotion, truncate(e.Transcript, 200))
	}

	if len(health) > 0 {
		b.WriteString("\nHealth data summary:\n")
		b.WriteString(digestHealth(health))
	}

	b.WriteString("\nProvide pattern analysis in JSON format.\n")
	return b.String()
}

// digestEmotions renders per-emotion counts and percentages, most frequent
// first.
func digestEmotions(entries []*Entry) string {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		emotion := e.Emotion
		if emotion == "" {
			emotion = "unknown"
		}
		if counts[emotion] == 0 {
			order = append(order, emotion)
		}
		counts[emotion]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	var b strings.Builder
	total := float64(len(entries))
	for _, emotion := range order {
		fmt.Fprintf(&b, "  - %s: %d (%.0f%%)\n", emotion, counts[emotion], float64(counts[emotion])/total*100)
	}
	return b.String()
}

// digestThemes renders theme mention counts, most frequent first.
func digestThemes(entries []*Entry) string {
	themes := ThemeBreakdown(entries)
	if len(themes) == 0 {
		return "  No themes detected\n"
	}
	var b strings.Builder
	for _, tc := range themes {
		fmt.Fprintf(&b, "  - %s: %d mentions\n", tc.Theme, tc.Count)
	}
	return b.String()
}

// digestHealth renders average sleep and HRV across records that expose
// those fields, normalizing structured sleep to hours first.
func digestHealth(health []*HealthRecord) string {
	var sleepVals, hrvVals []float64
	for _, h := range health {
		if hours, ok := h.Hours(); ok {
			sleepVals = append(sleepVals, hours)
		}
		if hrv, ok := h.HRV(); ok {
			hrvVals = append(hrvVals, hrv)
		}
	}

	var lines []string
	if len(sleepVals) > 0 {
		lines = append(lines, fmt.Sprintf("  - Average sleep: %.1f hours", mean(sleepVals)))
	}
	if len(hrvVals) > 0 {
		lines = append(lines, fmt.Sprintf("  - Average HRV: %.0fms", mean(hrvVals)))
	}
	if len(lines) == 0 {
		return "  Limited health data\n"
	}
	return strings.Join(lines, "\n") + "\n"
}

// mean averages a non-empty slice.
func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// fallback emits the degradation signal and derives a deterministic summary
// from the entries alone.
func (p *PatternSummarizer) fallback(ctx context.Context, entries []*Entry, cause error) Summary {
	capitan.Emit(ctx, AgentFallback,
		FieldAgent.Field("pattern"),
		FieldError.Field(cause),
	)

	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		emotion := e.Emotion
		if emotion == "" {
			emotion = "mixed"
		}
		if counts[emotion] == 0 {
			order = append(order, emotion)
		}
		counts[emotion]++
	}
	dominant := "mixed"
	best := 0
	for _, emotion := range order {
		if counts[emotion] > best {
			dominant = emotion
			best = counts[emotion]
		}
	}

	return Summary{
		PrimaryPattern:       "Dominant emotion: " + dominant,
		EmotionTrend:         "mixed",
		Insights:             []string{fmt.Sprintf("You had %d journal entries this period.", len(entries))},
		HealthConnections:    []string{},
		CarryForwardQuestion: "How has your week been?",
	}
}

// emptySummary is the canonical result for a period with no entries.
func emptySummary() Summary {
	return Summary{
		PrimaryPattern:       "No data available for analysis",
		EmotionTrend:         "unknown",
		Insights:             []string{"Start journaling to see patterns emerge over time."},
		HealthConnections:    []string{},
		SuggestedFocus:       "Try recording a journal entry today.",
		CarryForwardQuestion: "How are you feeling right now?",
	}
}
