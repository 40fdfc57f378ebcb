package attune

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// WorkflowError wraps any error surfaced by an orchestrator workflow with
// the workflow's name. Agent-level model failures never appear here; they
// are absorbed by the agents' fallbacks. What remains is persistence
// trouble and missing records.
type WorkflowError struct {
	Workflow string
	Err      error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("workflow %s: %v", e.Workflow, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// RecordResult is the outcome of recording a journal entry.
type RecordResult struct {
	Entry      *Entry
	Reflection string
	Confidence float64
}

// Exchange is a transient assess-reflect-question turn with no persistence.
type Exchange struct {
	Assessment Assessment
	Reflection string
	FollowUp   Question
}

// Engagement summarizes a user's journaling consistency. Streaks are
// derived from entry timestamps on read, never stored.
type Engagement struct {
	CurrentStreak int
	LongestStreak int
	TotalEntries  int
}

// recordState threads the record-entry pipeline.
type recordState struct {
	userID     string
	transcript string
	at         time.Time
	assessment Assessment
	reflection string
	entry      *Entry
}

// startState threads the starting-question pipeline.
type startState struct {
	userID   string
	question Question
}

// insightState threads the period-insight pipeline.
type insightState struct {
	userID  string
	period  Period
	from    time.Time
	to      time.Time
	entries []*Entry
	health  []*HealthRecord
	insight *Insight
}

// Orchestrator coordinates the agents against the persistence ports. All
// collaborators are injected at construction; there is no ambient registry.
type Orchestrator struct {
	assessor  *EmotionAssessor
	reflector *ReflectionGenerator
	questions *QuestionGenerator
	patterns  *PatternSummarizer
	store     Store
	health    HealthStore
	lookback  int
	now       func() time.Time

	record   *pipz.Sequence[*recordState]
	starting *pipz.Fallback[*startState]
	insight  *pipz.Sequence[*insightState]
}

// NewOrchestrator wires the agents to a shared model and the persistence
// ports, and assembles the workflow pipelines.
func NewOrchestrator(model LanguageModel, store Store, health HealthStore) *Orchestrator {
	o := &Orchestrator{
		assessor:  NewEmotionAssessor(model),
		reflector: NewReflectionGenerator(model),
		questions: NewQuestionGenerator(model),
		patterns:  NewPatternSummarizer(model),
		store:     store,
		health:    health,
		lookback:  DefaultLookbackDays,
		now:       time.Now,
	}
	o.record = o.buildRecordPipeline()
	o.starting = o.buildStartingPipeline()
	o.insight = o.buildInsightPipeline()
	return o
}

// WithLookbackDays sets the recent-entry window used for starting-question
// context.
func (o *Orchestrator) WithLookbackDays(days int) *Orchestrator {
	o.lookback = days
	return o
}

// WithNow sets the clock. Used by tests to pin entry timestamps and
// insight windows.
func (o *Orchestrator) WithNow(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// WithRand sets the random source for fallback question selection.
func (o *Orchestrator) WithRand(r *rand.Rand) *Orchestrator {
	o.questions.WithRand(r)
	return o
}

func (o *Orchestrator) buildRecordPipeline() *pipz.Sequence[*recordState] {
	return pipz.NewSequence(pipz.Name("record-entry"),
		pipz.Apply(pipz.Name("assess"), func(ctx context.Context, s *recordState) (*recordState, error) {
			s.assessment = o.assessor.Assess(ctx, s.transcript)
			return s, nil
		}),
		pipz.Apply(pipz.Name("reflect"), func(ctx context.Context, s *recordState) (*recordState, error) {
			s.reflection = o.reflector.Reflect(ctx, s.transcript,
				s.assessment.Emotion, s.assessment.Intensity, s.assessment.Themes)
			return s, nil
		}),
		pipz.Apply(pipz.Name("persist"), func(ctx context.Context, s *recordState) (*recordState, error) {
			entry, err := o.store.CreateEntry(ctx, NewEntry(s.userID, s.transcript, s.reflection, s.assessment, s.at))
			if err != nil {
				return s, fmt.Errorf("create entry: %w", err)
			}
			s.entry = entry
			return s, nil
		}),
		pipz.Apply(pipz.Name("engagement"), func(ctx context.Context, s *recordState) (*recordState, error) {
			if err := o.store.BumpEngagement(ctx, s.userID, s.at); err != nil {
				return s, fmt.Errorf("bump engagement: %w", err)
			}
			return s, nil
		}),
	)
}

// RecordEntry runs the full record workflow: assess the transcript, generate
// a reflection, persist the entry, and bump engagement counters. Model
// failures degrade to canonical fallbacks inside the agents; only
// persistence failures surface as errors.
func (o *Orchestrator) RecordEntry(ctx context.Context, userID, transcript string) (*RecordResult, error) {
	start := time.Now()
	capitan.Emit(ctx, WorkflowStarted,
		FieldWorkflow.Field("record-entry"),
		FieldUserID.Field(userID),
	)

	state := &recordState{userID: userID, transcript: transcript, at: o.now().UTC()}
	state, err := o.record.Process(ctx, state)
	if err != nil {
		return nil, o.fail(ctx, "record-entry", start, err)
	}

	capitan.Emit(ctx, EntryRecorded,
		FieldUserID.Field(userID),
		FieldEntryID.Field(state.entry.ID),
		FieldEmotion.Field(state.entry.Emotion),
		FieldIntensity.Field(float32(state.entry.Intensity)),
		FieldSource.Field(state.entry.Source),
	)
	o.complete(ctx, "record-entry", start)

	return &RecordResult{
		Entry:      state.entry,
		Reflection: state.reflection,
		Confidence: state.assessment.Confidence,
	}, nil
}

func (o *Orchestrator) buildStartingPipeline() *pipz.Fallback[*startState] {
	personalized := pipz.Apply(pipz.Name("personalized"), func(ctx context.Context, s *startState) (*startState, error) {
		since := o.now().UTC().AddDate(0, 0, -o.lookback)
		entries, err := o.store.RecentEntries(ctx, s.userID, since)
		if err != nil {
			return s, fmt.Errorf("recent entries: %w", err)
		}

		qc := QuestionContext{}
		seen := make(map[string]bool)
		for _, e := range entries {
			qc.RecentEmotions = append(qc.RecentEmotions, EmotionObservation{
				Emotion:   e.Emotion,
				Intensity: e.Intensity,
			})
			for _, theme := range e.Themes {
				if !seen[theme] {
					seen[theme] = true
					qc.RecentThemes = append(qc.RecentThemes, theme)
				}
			}
		}
		if latest, err := o.health.Latest(ctx, s.userID); err != nil {
			return s, fmt.Errorf("latest health: %w", err)
		} else if latest != nil {
			qc.Health = latest
		}

		s.question = o.questions.Starting(ctx, qc)
		return s, nil
	})
	pool := pipz.Apply(pipz.Name("pool"), func(_ context.Context, s *startState) (*startState, error) {
		s.question = o.questions.Fallback()
		return s, nil
	})
	return pipz.NewFallback(pipz.Name("starting-question"), personalized, pool)
}

// StartingQuestion produces the check-in question that opens a journaling
// session, personalized from the lookback window and the latest health
// record. Context gathering failures degrade to a pool question rather than
// erroring; a question is always returned.
func (o *Orchestrator) StartingQuestion(ctx context.Context, userID string) (Question, error) {
	start := time.Now()
	capitan.Emit(ctx, WorkflowStarted,
		FieldWorkflow.Field("starting-question"),
		FieldUserID.Field(userID),
	)

	state := &startState{userID: userID}
	state, err := o.starting.Process(ctx, state)
	if err != nil {
		// Both branches absorb failures internally; not reachable in practice.
		return Question{}, o.fail(ctx, "starting-question", start, err)
	}

	capitan.Emit(ctx, QuestionGenerated,
		FieldUserID.Field(userID),
		FieldSource.Field(state.question.Source),
	)
	o.complete(ctx, "starting-question", start)
	return state.question, nil
}

// FollowUpQuestion produces a deepening question for an existing entry's
// conversation. A missing entry surfaces as a WorkflowError wrapping
// ErrNotFound.
func (o *Orchestrator) FollowUpQuestion(ctx context.Context, entryID string) (Question, error) {
	start := time.Now()
	capitan.Emit(ctx, WorkflowStarted,
		FieldWorkflow.Field("follow-up-question"),
		FieldEntryID.Field(entryID),
	)

	entry, err := o.store.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
		} else {
			err = fmt.Errorf("get entry: %w", err)
		}
		return Question{}, o.fail(ctx, "follow-up-question", start, err)
	}

	question := o.questions.FollowUp(ctx, entry.Transcript, entry.Reflection)
	capitan.Emit(ctx, QuestionGenerated,
		FieldUserID.Field(entry.UserID),
		FieldEntryID.Field(entry.ID),
		FieldSource.Field(question.Source),
	)
	o.complete(ctx, "follow-up-question", start)
	return question, nil
}

func (o *Orchestrator) buildInsightPipeline() *pipz.Sequence[*insightState] {
	return pipz.NewSequence(pipz.Name("period-insight"),
		pipz.Apply(pipz.Name("load-entries"), func(ctx context.Context, s *insightState) (*insightState, error) {
			entries, err := o.store.RecentEntries(ctx, s.userID, s.from)
			if err != nil {
				return s, fmt.Errorf("load entries: %w", err)
			}
			s.entries = entries
			return s, nil
		}),
		pipz.Apply(pipz.Name("load-health"), func(ctx context.Context, s *insightState) (*insightState, error) {
			health, err := o.health.Range(ctx, s.userID, s.from, s.to)
			if err != nil {
				return s, fmt.Errorf("load health: %w", err)
			}
			s.health = health
			return s, nil
		}),
		pipz.Apply(pipz.Name("summarize"), func(ctx context.Context, s *insightState) (*insightState, error) {
			summary := o.patterns.Summarize(ctx, s.entries, s.health, s.period)
			s.insight = &Insight{
				UserID:               s.userID,
				Period:               s.period,
				PeriodStart:          s.from,
				PeriodEnd:            s.to,
				Summary:              summary.PrimaryPattern,
				EmotionTrend:         summary.EmotionTrend,
				EmotionBreakdown:     EmotionBreakdown(s.entries),
				TopThemes:            ThemeBreakdown(s.entries),
				Insights:             summary.Insights,
				HealthConnections:    summary.HealthConnections,
				Correlations:         HealthCorrelations(s.entries, s.health),
				SuggestedFocus:       summary.SuggestedFocus,
				CarryForwardQuestion: summary.CarryForwardQuestion,
				EntryCount:           len(s.entries),
				CreatedAt:            s.to,
			}
			if s.insight.Correlations == nil {
				s.insight.Correlations = []CorrelationResult{}
			}
			return s, nil
		}),
		pipz.Apply(pipz.Name("persist"), func(ctx context.Context, s *insightState) (*insightState, error) {
			saved, err := o.store.CreateInsight(ctx, s.insight)
			if err != nil {
				return s, fmt.Errorf("create insight: %w", err)
			}
			s.insight = saved
			return s, nil
		}),
	)
}

// PeriodInsight aggregates a user's entries and health data over the period
// ending now, merges statistical breakdowns with the summarizer's narrative,
// and persists the result. A window with no entries still produces an
// insight carrying the canonical no-data summary.
func (o *Orchestrator) PeriodInsight(ctx context.Context, userID string, period Period) (*Insight, error) {
	start := time.Now()
	capitan.Emit(ctx, WorkflowStarted,
		FieldWorkflow.Field("period-insight"),
		FieldUserID.Field(userID),
		FieldPeriod.Field(string(period)),
	)

	to := o.now().UTC()
	state := &insightState{
		userID: userID,
		period: period,
		from:   to.AddDate(0, 0, -period.Days()),
		to:     to,
	}
	state, err := o.insight.Process(ctx, state)
	if err != nil {
		return nil, o.fail(ctx, "period-insight", start, err)
	}

	capitan.Emit(ctx, InsightCreated,
		FieldUserID.Field(userID),
		FieldPeriod.Field(string(period)),
		FieldEntryCount.Field(state.insight.EntryCount),
	)
	o.complete(ctx, "period-insight", start)
	return state.insight, nil
}

// ReflectAndFollowUp runs an assess-reflect-question turn without touching
// storage. Used for mid-conversation exchanges before the entry is recorded.
func (o *Orchestrator) ReflectAndFollowUp(ctx context.Context, transcript string) Exchange {
	assessment := o.assessor.Assess(ctx, transcript)
	reflection := o.reflector.Reflect(ctx, transcript,
		assessment.Emotion, assessment.Intensity, assessment.Themes)
	return Exchange{
		Assessment: assessment,
		Reflection: reflection,
		FollowUp:   o.questions.FollowUp(ctx, transcript, reflection),
	}
}

// UserEngagement derives streak and volume figures from the user's full
// entry history.
func (o *Orchestrator) UserEngagement(ctx context.Context, userID string) (*Engagement, error) {
	entries, err := o.store.RecentEntries(ctx, userID, time.Time{})
	if err != nil {
		return nil, &WorkflowError{Workflow: "engagement", Err: fmt.Errorf("load entries: %w", err)}
	}

	dates := make([]time.Time, len(entries))
	for i, e := range entries {
		dates[i] = e.CreatedAt
	}
	return &Engagement{
		CurrentStreak: Streak(dates, o.now()),
		LongestStreak: LongestStreak(dates),
		TotalEntries:  len(entries),
	}, nil
}

// fail emits the failure signal and wraps the error with the workflow name.
func (o *Orchestrator) fail(ctx context.Context, workflow string, start time.Time, err error) error {
	capitan.Error(ctx, WorkflowFailed,
		FieldWorkflow.Field(workflow),
		FieldDuration.Field(time.Since(start)),
		FieldError.Field(err),
	)
	return &WorkflowError{Workflow: workflow, Err: err}
}

// complete emits the completion signal.
func (o *Orchestrator) complete(ctx context.Context, workflow string, start time.Time) {
	capitan.Emit(ctx, WorkflowCompleted,
		FieldWorkflow.Field(workflow),
		FieldDuration.Field(time.Since(start)),
	)
}
