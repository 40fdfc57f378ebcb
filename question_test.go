package attune

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func inFallbackPool(text string) bool {
	for _, q := range FallbackQuestions {
		if q == text {
			return true
		}
	}
	return false
}

func TestStarting_GeneralWhenNoContext(t *testing.T) {
	model := &mockModel{response: "How are you doing today?"}
	gen := NewQuestionGenerator(model)

	q := gen.Starting(context.Background(), QuestionContext{})

	if q.Text != "How are you doing today?" {
		t.Errorf("unexpected question: %q", q.Text)
	}
	if !reflect.DeepEqual(q.Contexts, []string{"general"}) {
		t.Errorf("expected [general], got %v", q.Contexts)
	}
	if q.Source != "ai" {
		t.Errorf("expected source ai, got %q", q.Source)
	}
}

func TestStarting_PersonalizedContexts(t *testing.T) {
	model := &mockModel{response: `"Feeling any lighter today?"`}
	gen := NewQuestionGenerator(model)

	q := gen.Starting(context.Background(), QuestionContext{
		RecentEmotions: []EmotionObservation{
			{Emotion: "stress", Intensity: 0.8},
			{Emotion: "stress", Intensity: 0.7},
			{Emotion: "calm", Intensity: 0.3},
		},
		RecentThemes: []string{"work", "rest"},
		Health:       &HealthRecord{SleepHours: 5},
	})

	want := []string{"recent_emotions", "recent_themes", "health_data"}
	if !reflect.DeepEqual(q.Contexts, want) {
		t.Errorf("expected %v, got %v", want, q.Contexts)
	}
	if q.Text != "Feeling any lighter today?" {
		t.Errorf("quotes not stripped: %q", q.Text)
	}

	user := model.calls[0].userMessage
	if !strings.Contains(user, "mostly stress, calm") {
		t.Errorf("prompt missing emotion summary: %q", user)
	}
	if !strings.Contains(user, "low sleep") {
		t.Errorf("prompt missing health flags: %q", user)
	}
}

func TestStarting_ModelFailureFallsBackToPool(t *testing.T) {
	model := &mockModel{err: errors.New("unavailable")}
	gen := NewQuestionGenerator(model)

	q := gen.Starting(context.Background(), QuestionContext{})

	if !inFallbackPool(q.Text) {
		t.Errorf("fallback question not in pool: %q", q.Text)
	}
	if !reflect.DeepEqual(q.Contexts, []string{"fallback"}) {
		t.Errorf("expected [fallback], got %v", q.Contexts)
	}
	if q.Source != "fallback" {
		t.Errorf("expected source fallback, got %q", q.Source)
	}
}

func TestFollowUp_TruncatesLongInputs(t *testing.T) {
	model := &mockModel{response: "What made it feel that way?"}
	gen := NewQuestionGenerator(model)

	long := strings.Repeat("x", 2000)
	q := gen.FollowUp(context.Background(), long, long)

	if q.Source != "ai" {
		t.Errorf("expected source ai, got %q", q.Source)
	}
	user := model.calls[0].userMessage
	if len(user) > 1200 {
		t.Errorf("prompt not truncated, length %d", len(user))
	}
}

func TestFollowUp_ModelFailureFallsBackToPool(t *testing.T) {
	model := &mockModel{err: errors.New("unavailable")}
	gen := NewQuestionGenerator(model)

	q := gen.FollowUp(context.Background(), "transcript", "reflection")

	if !inFallbackPool(q.Text) {
		t.Errorf("fallback question not in pool: %q", q.Text)
	}
	if q.Source != "fallback" {
		t.Errorf("expected source fallback, got %q", q.Source)
	}
}

func TestFallback_SeededRandIsDeterministic(t *testing.T) {
	a := NewQuestionGenerator(&mockModel{}).WithRand(rand.New(rand.NewSource(7)))
	b := NewQuestionGenerator(&mockModel{}).WithRand(rand.New(rand.NewSource(7)))

	for i := 0; i < 10; i++ {
		qa, qb := a.Fallback(), b.Fallback()
		if qa.Text != qb.Text {
			t.Fatalf("seeded selection diverged at %d: %q vs %q", i, qa.Text, qb.Text)
		}
		if !inFallbackPool(qa.Text) {
			t.Fatalf("selection not in pool: %q", qa.Text)
		}
	}
}

func TestSummarizeEmotions(t *testing.T) {
	got := summarizeEmotions([]EmotionObservation{
		{Emotion: "stress", Intensity: 0.9},
		{Emotion: "stress", Intensity: 0.8},
		{Emotion: "anxiety", Intensity: 0.7},
	})
	if got != "mostly stress, anxiety with high intensity" {
		t.Errorf("unexpected summary: %q", got)
	}

	if got := summarizeEmotions(nil); got != "" {
		t.Errorf("expected empty summary for no observations, got %q", got)
	}
}

func TestCleanQuestion(t *testing.T) {
	if got := cleanQuestion(`  "How's it going?"  `); got != "How's it going?" {
		t.Errorf("unexpected clean result: %q", got)
	}
}
