package attune

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/zoobzio/capitan"
)

// FallbackQuestions is the fixed pool used when the model is unavailable.
// Selection is uniform random by design; tests should assert membership,
// not exact value.
var FallbackQuestions = []string{
	"How are you feeling right now?",
	"What's been on your mind today?",
	"How would you describe your energy level?",
	"What's one thing you're grateful for today?",
	"How has your week been going?",
}

const questionSystemPrompt = `You generate simple check-in questions. Keep it casual like texting a friend.

Rules:
- ONE short question only
- Use simple everyday words
- No therapy talk
- No mentioning data or patterns directly

Good examples:
- "Hey, how are you doing today?"
- "What's on your mind?"
- "How's your day going?"
- "How are you feeling?"
- "What's been going on?"

Output ONLY the question.`

// Question is a generated check-in or follow-up question together with the
// context categories that informed it and how it was produced.
type Question struct {
	Text     string   `json:"text"`
	Contexts []string `json:"contexts_used"`
	Source   string   `json:"source"` // "ai" or "fallback"
}

// EmotionObservation is one recent emotion data point used to personalize
// the starting question.
type EmotionObservation struct {
	Emotion   string
	Intensity float64
}

// QuestionContext carries the optional personalization inputs for a
// starting question. Zero value means no context: a generic opening
// question is requested.
type QuestionContext struct {
	RecentEmotions []EmotionObservation
	RecentThemes   []string
	Health         *HealthRecord
}

// QuestionGenerator produces check-in and follow-up questions. Both entry
// points share one style contract: short, casual, a single question, and no
// data or pattern leakage into the phrasing.
type QuestionGenerator struct {
	model LanguageModel
	rand  *rand.Rand
}

// NewQuestionGenerator creates a generator bound to the given model.
func NewQuestionGenerator(model LanguageModel) *QuestionGenerator {
	return &QuestionGenerator{model: model}
}

// WithRand sets the random source used for fallback selection.
// Inject a seeded source when reproducibility is required.
func (q *QuestionGenerator) WithRand(r *rand.Rand) *QuestionGenerator {
	q.rand = r
	return q
}

// Starting generates a personalized check-in question from recent context,
// or a generic opening question when no context is supplied. On any model
// failure it returns a pool fallback with Contexts ["fallback"].
func (q *QuestionGenerator) Starting(ctx context.Context, qc QuestionContext) Question {
	var parts, contexts []string
	if summary := summarizeEmotions(qc.RecentEmotions); summary != "" {
		parts = append(parts, "Recent emotional patterns: "+summary)
		contexts = append(contexts, "recent_emotions")
	}
	if len(qc.RecentThemes) > 0 {
		themes := qc.RecentThemes
		if len(themes) > 5 {
			themes = themes[:5]
		}
		parts = append(parts, "Recent themes in conversations: "+strings.Join(themes, ", "))
		contexts = append(contexts, "recent_themes")
	}
	if qc.Health != nil {
		if flags := qc.Health.Flags(); len(flags) > 0 {
			parts = append(parts, "Health context: "+strings.Join(flags, ", "))
			contexts = append(contexts, "health_data")
		}
	}

	var userMessage string
	if len(parts) > 0 {
		userMessage = "Generate a personalized check-in question based on this context:\n\n" + strings.Join(parts, "\n")
	} else {
		userMessage = "Generate a gentle, general check-in question for someone starting their daily journaling session."
		contexts = []string{"general"}
	}

	text, err := q.model.Generate(ctx, questionSystemPrompt, userMessage, DefaultQuestionTokens)
	if err != nil {
		return q.fallback(ctx, err)
	}
	return Question{Text: cleanQuestion(text), Contexts: contexts, Source: "ai"}
}

// FollowUp generates one short deepening question for the current
// conversation turn. On any model failure it returns a pool fallback.
func (q *QuestionGenerator) FollowUp(ctx context.Context, transcript, reflection string) Question {
	userMessage := fmt.Sprintf(`Current conversation turn:

User said: %q
You reflected: %q

Generate ONE short follow-up question to gently deepen the conversation. Warm, non-judgmental. One sentence only. Output ONLY the question.`,
		truncate(transcript, 500), truncate(reflection, 300))

	text, err := q.model.Generate(ctx, questionSystemPrompt, userMessage, DefaultFollowUpTokens)
	if err != nil {
		return q.fallback(ctx, err)
	}
	return Question{Text: cleanQuestion(text), Contexts: []string{"conversation"}, Source: "ai"}
}

// Fallback returns a uniformly-selected question from the fixed pool.
// Never empty.
func (q *QuestionGenerator) Fallback() Question {
	var pick string
	if q.rand != nil {
		pick = FallbackQuestions[q.rand.Intn(len(FallbackQuestions))]
	} else {
		pick = FallbackQuestions[rand.Intn(len(FallbackQuestions))]
	}
	return Question{Text: pick, Contexts: []string{"fallback"}, Source: "fallback"}
}

// fallback emits the degradation signal and returns a pool question.
func (q *QuestionGenerator) fallback(ctx context.Context, cause error) Question {
	capitan.Emit(ctx, AgentFallback,
		FieldAgent.Field("question"),
		FieldError.Field(cause),
	)
	return q.Fallback()
}

// summarizeEmotions renders recent emotions as "mostly a, b, c with
// low|moderate|high intensity" for the prompt. Empty input yields "".
func summarizeEmotions(observations []EmotionObservation) string {
	if len(observations) == 0 {
		return ""
	}

	counts := make(map[string]int)
	var order []string
	var intensitySum float64
	for _, o := range observations {
		if counts[o.Emotion] == 0 {
			order = append(order, o.Emotion)
		}
		counts[o.Emotion]++
		intensitySum += o.Intensity
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 3 {
		order = order[:3]
	}

	avg := intensitySum / float64(len(observations))
	level := "low"
	switch {
	case avg > 0.7:
		level = "high"
	case avg > 0.4:
		level = "moderate"
	}
	return fmt.Sprintf("mostly %s with %s intensity", strings.Join(order, ", "), level)
}

// cleanQuestion strips whitespace and surrounding quotes from model output.
func cleanQuestion(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
