package attune

// Default configuration for agents and workflows.
// These can be overridden per-instance using builder methods.
var (
	// DefaultTemperature is the sampling temperature used by model adapters
	// that accept one. Low for consistent structured output.
	DefaultTemperature float32 = 0.3

	// Token budgets per agent call. These are soft output caps passed to the
	// LanguageModel; they bound response length, not prompt length.
	DefaultAssessTokens   = 300
	DefaultReflectTokens  = 80
	DefaultQuestionTokens = 150
	DefaultFollowUpTokens = 80
	DefaultSummaryTokens  = 500

	// DefaultLookbackDays bounds the recent-entry window consulted when
	// building starting-question context.
	DefaultLookbackDays = 3
)

// Period is the aggregation window for pattern summaries and insights.
type Period string

// Supported insight periods.
const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Days returns the window length for the period.
func (p Period) Days() int {
	if p == Monthly {
		return 30
	}
	return 7
}
