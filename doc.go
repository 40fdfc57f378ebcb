// Package attune extracts emotional signal from journal transcripts and
// turns it into reflections, check-in questions, and period insights.
//
// attune implements an agent-orchestrator architecture where every model
// call degrades to a deterministic fallback, so the journaling flow never
// blocks on an unavailable or misbehaving model.
//
// # Agents
//
// Four agents share one [LanguageModel] port:
//
//   - [EmotionAssessor] - Classifies a transcript into emotion, intensity,
//     and themes. Falls back to [NeutralAssessment].
//   - [ReflectionGenerator] - Produces a short empathetic reply. Falls back
//     to [FallbackReflection].
//   - [QuestionGenerator] - Produces check-in and follow-up questions.
//     Falls back to a fixed question pool.
//   - [PatternSummarizer] - Aggregates a period of entries into a narrative
//     summary. Falls back to a summary derived from the entries alone.
//
// Fallbacks are canonical values: the same failure always produces the
// same result, and every degradation emits an [AgentFallback] signal.
//
// # Orchestrator
//
// [Orchestrator] coordinates the agents against the [Store] and
// [HealthStore] ports:
//
//	orch := attune.NewOrchestrator(model, store, health)
//	result, err := orch.RecordEntry(ctx, userID, transcript)
//
// Workflows:
//
//   - [Orchestrator.RecordEntry] - Assess, reflect, persist, bump engagement
//   - [Orchestrator.StartingQuestion] - Personalized session opener
//   - [Orchestrator.FollowUpQuestion] - Deepening question for an entry
//   - [Orchestrator.PeriodInsight] - Weekly or monthly pattern analysis
//   - [Orchestrator.ReflectAndFollowUp] - Transient turn, no persistence
//   - [Orchestrator.UserEngagement] - Streaks derived from entry history
//
// # Analysis
//
// Statistical analysis is pure and model-free:
//
//   - [Pearson] - Product-moment correlation with degenerate-input guards
//   - [EmotionBreakdown], [ThemeBreakdown] - Period distributions
//   - [HealthCorrelations] - Sleep, activity, and HRV against daily mood
//   - [Streak], [LongestStreak] - Consecutive-day journaling runs
//
// # Model Adapters
//
// [OpenAIModel] talks to the OpenAI Responses API. [ZynModel] adapts any
// zyn-compatible provider. Both satisfy [LanguageModel]; tests inject
// their own.
//
// # Persistence
//
// [PgStore] and [PgHealthStore] are soy-backed Postgres implementations of
// the ports. Observability flows through capitan signals; hook
// [WorkflowStarted], [WorkflowCompleted], [WorkflowFailed], and
// [AgentFallback] to watch the pipeline work.
package attune
