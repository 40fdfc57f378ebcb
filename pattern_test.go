package attune

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func entryWith(emotion string, themes []string, day int) *Entry {
	return &Entry{
		UserID:    "u1",
		Emotion:   emotion,
		Themes:    themes,
		Sentiment: sentimentScore(emotion, 0.5),
		CreatedAt: time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC),
	}
}

func TestSummarize_NoEntriesReturnsCanonicalSummary(t *testing.T) {
	model := &mockModel{response: "should never be called"}
	sum := NewPatternSummarizer(model)

	got := sum.Summarize(context.Background(), nil, nil, Weekly)

	want := Summary{
		PrimaryPattern:       "No data available for analysis",
		EmotionTrend:         "unknown",
		Insights:             []string{"Start journaling to see patterns emerge over time."},
		HealthConnections:    []string{},
		SuggestedFocus:       "Try recording a journal entry today.",
		CarryForwardQuestion: "How are you feeling right now?",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected empty summary: %+v", got)
	}
	if model.callCount() != 0 {
		t.Errorf("no-data path must not call the model, got %d calls", model.callCount())
	}
}

func TestSummarize_EmptyCanonicalRegardlessOfHealth(t *testing.T) {
	sum := NewPatternSummarizer(&mockModel{})
	health := []*HealthRecord{{UserID: "u1", SleepHours: 7}}

	withHealth := sum.Summarize(context.Background(), nil, health, Monthly)
	withoutHealth := sum.Summarize(context.Background(), nil, nil, Monthly)

	if !reflect.DeepEqual(withHealth, withoutHealth) {
		t.Errorf("empty summary varies with health data: %+v vs %+v", withHealth, withoutHealth)
	}
}

func TestSummarize_ParsesModelOutput(t *testing.T) {
	model := &mockModel{response: `{
		"primary_pattern": "Stress peaks midweek",
		"emotion_trend": "decreasing",
		"insights": ["I noticed work themes cluster on Tuesdays"],
		"health_connections": ["Better sleep preceded calmer days"],
		"suggested_focus": "Protect your Tuesday evenings",
		"carry_forward_question": "Did the midweek pressure ease up?"
	}`}
	sum := NewPatternSummarizer(model)

	got := sum.Summarize(context.Background(), []*Entry{entryWith("stress", nil, 10)}, nil, Weekly)

	if got.PrimaryPattern != "Stress peaks midweek" {
		t.Errorf("unexpected pattern: %q", got.PrimaryPattern)
	}
	if got.EmotionTrend != "decreasing" {
		t.Errorf("unexpected trend: %q", got.EmotionTrend)
	}
	if len(got.HealthConnections) != 1 {
		t.Errorf("unexpected health connections: %v", got.HealthConnections)
	}
}

func TestSummarize_NormalizesSparseOutput(t *testing.T) {
	model := &mockModel{response: `{}`}
	sum := NewPatternSummarizer(model)

	got := sum.Summarize(context.Background(), []*Entry{entryWith("joy", nil, 10)}, nil, Weekly)

	if got.PrimaryPattern != "No clear pattern detected" {
		t.Errorf("unexpected pattern default: %q", got.PrimaryPattern)
	}
	if got.EmotionTrend != "mixed" {
		t.Errorf("unexpected trend default: %q", got.EmotionTrend)
	}
	if got.Insights == nil || got.HealthConnections == nil {
		t.Error("slices must be non-nil")
	}
	if got.CarryForwardQuestion != "How has your week been?" {
		t.Errorf("unexpected carry-forward default: %q", got.CarryForwardQuestion)
	}
}

func TestSummarize_CapsInsightsAtThree(t *testing.T) {
	model := &mockModel{response: `{
		"primary_pattern": "p",
		"insights": ["one", "two", "three", "four", "five"]
	}`}
	sum := NewPatternSummarizer(model)

	got := sum.Summarize(context.Background(), []*Entry{entryWith("calm", nil, 10)}, nil, Weekly)

	if len(got.Insights) != 3 {
		t.Errorf("expected 3 insights, got %d", len(got.Insights))
	}
}

func TestSummarize_ModelFailureDerivesDeterministicFallback(t *testing.T) {
	model := &mockModel{err: errors.New("overloaded")}
	sum := NewPatternSummarizer(model)

	entries := []*Entry{
		entryWith("stress", nil, 10),
		entryWith("stress", nil, 11),
		entryWith("calm", nil, 12),
	}
	got := sum.Summarize(context.Background(), entries, nil, Weekly)

	if got.PrimaryPattern != "Dominant emotion: stress" {
		t.Errorf("unexpected fallback pattern: %q", got.PrimaryPattern)
	}
	if got.EmotionTrend != "mixed" {
		t.Errorf("unexpected fallback trend: %q", got.EmotionTrend)
	}
	if len(got.Insights) != 1 || !strings.Contains(got.Insights[0], "3 journal entries") {
		t.Errorf("unexpected fallback insights: %v", got.Insights)
	}
}

func TestBuildDigest_IncludesBreakdownsAndHealth(t *testing.T) {
	entries := []*Entry{
		entryWith("stress", []string{"work"}, 10),
		entryWith("stress", []string{"work", "rest"}, 11),
		entryWith("joy", nil, 12),
	}
	entries[0].Transcript = "Long day at the office."
	health := []*HealthRecord{
		{Sleep: &SleepData{DurationMinutes: 420}, Heart: &HeartData{HRV: 55}},
		{SleepHours: 8},
	}

	digest := buildDigest(entries, health, Weekly)

	for _, want := range []string{
		"Total entries: 3",
		"stress: 2 (67%)",
		"work: 2 mentions",
		`[stress] "Long day at the office."`,
		"Average sleep: 7.5 hours",
		"Average HRV: 55ms",
	} {
		if !strings.Contains(digest, want) {
			t.Errorf("digest missing %q:\n%s", want, digest)
		}
	}
}
