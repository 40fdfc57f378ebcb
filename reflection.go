package attune

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoobzio/capitan"
)

// FallbackReflection is the fixed acknowledgment returned when the model
// cannot produce a reflection.
const FallbackReflection = "I'm here. Take your time."

const reflectSystemPrompt = `You are a warm, human voice that reflects back what the person just shared.
You are not a therapist, coach, or advisor. You are a presence.

STYLE
- Speak like a close friend, out loud. Natural, calm, and grounded.
- 1-2 short sentences max. Brevity matters.
- Use simple, everyday language. Contractions are good.
- Fragments are okay. Silence is okay.

CONTENT
- Gently mirror the emotional core of what they said.
  Examples: "That sounds heavy." "Yeah... that would wear anyone down."
- If it fits, ask ONE soft follow-up question - or ask none at all.
  Often, no question is better.

RULES (VERY IMPORTANT)
- Do NOT give advice, suggestions, or next steps.
- Do NOT analyze, label, or diagnose.
- Do NOT reframe positively or try to fix anything.
- Avoid therapy phrases and formal language.

NEVER SAY
- "I understand how you feel"
- "Thank you for sharing"
- "It's important to..."
- "You should..."
- "Have you tried..."

GOAL
Make the person feel heard - like someone is sitting with them, not solving them.`

// ReflectionGenerator produces a short empathetic reply conditioned on the
// assessed emotion. The style contract (no advice, no diagnosis, at most one
// gentle question) is enforced at prompt level only.
type ReflectionGenerator struct {
	model     LanguageModel
	maxTokens int
}

// NewReflectionGenerator creates a generator bound to the given model.
func NewReflectionGenerator(model LanguageModel) *ReflectionGenerator {
	return &ReflectionGenerator{
		model:     model,
		maxTokens: DefaultReflectTokens,
	}
}

// WithMaxTokens sets the output token budget for reflection calls.
func (r *ReflectionGenerator) WithMaxTokens(n int) *ReflectionGenerator {
	r.maxTokens = n
	return r
}

// Reflect generates an empathetic reflection for the transcript, conditioned
// on the assessed emotion, intensity, and themes. On any model failure it
// returns FallbackReflection.
func (r *ReflectionGenerator) Reflect(ctx context.Context, transcript, emotion string, intensity float64, themes []string) string {
	var parts []string
	if emotion != "" {
		parts = append(parts, fmt.Sprintf("Primary emotion detected: %s (%s)", emotion, intensityWord(intensity)))
	}
	if len(themes) > 0 {
		parts = append(parts, "Themes: "+strings.Join(themes, ", "))
	}

	userMessage := fmt.Sprintf(`User said:
%q

%s

Reply in 1-2 short, natural sentences. Mirror their feeling. Optional: one gentle follow-up question.`, transcript, strings.Join(parts, "\n"))

	reply, err := r.model.Generate(ctx, reflectSystemPrompt, userMessage, r.maxTokens)
	if err != nil {
		capitan.Emit(ctx, AgentFallback,
			FieldAgent.Field("reflect"),
			FieldError.Field(err),
		)
		return FallbackReflection
	}
	return strings.TrimSpace(reply)
}

// intensityWord buckets an intensity value into a prompt descriptor.
func intensityWord(intensity float64) string {
	switch {
	case intensity > 0.7:
		return "intense"
	case intensity > 0.4:
		return "moderate"
	default:
		return "gentle"
	}
}
