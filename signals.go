package attune

import "github.com/zoobzio/capitan"

// Signal definitions for journaling workflow events.
// Signals follow the pattern: attune.<entity>.<event>.
var (
	// Workflow lifecycle signals.
	WorkflowStarted = capitan.NewSignal(
		"attune.workflow.started",
		"Orchestrator workflow began execution",
	)
	WorkflowCompleted = capitan.NewSignal(
		"attune.workflow.completed",
		"Orchestrator workflow finished successfully",
	)
	WorkflowFailed = capitan.NewSignal(
		"attune.workflow.failed",
		"Orchestrator workflow encountered an error",
	)

	// Agent degradation signals.
	AgentFallback = capitan.NewSignal(
		"attune.agent.fallback",
		"Agent absorbed a model or parse failure and returned its canonical fallback",
	)

	// Record signals.
	EntryRecorded = capitan.NewSignal(
		"attune.entry.recorded",
		"Journal entry persisted with assessment and reflection",
	)
	QuestionGenerated = capitan.NewSignal(
		"attune.question.generated",
		"Check-in or follow-up question produced",
	)
	InsightCreated = capitan.NewSignal(
		"attune.insight.created",
		"Period insight persisted with breakdowns and narrative summary",
	)
)

// Field keys for attune event data.
var (
	// Workflow metadata.
	FieldWorkflow = capitan.NewStringKey("workflow")
	FieldUserID   = capitan.NewStringKey("user_id")
	FieldDuration = capitan.NewDurationKey("duration")

	// Agent metadata.
	FieldAgent  = capitan.NewStringKey("agent") // assess, reflect, question, pattern
	FieldSource = capitan.NewStringKey("source")

	// Record metadata.
	FieldEntryID    = capitan.NewStringKey("entry_id")
	FieldEmotion    = capitan.NewStringKey("emotion")
	FieldIntensity  = capitan.NewFloat32Key("intensity")
	FieldPeriod     = capitan.NewStringKey("period")
	FieldEntryCount = capitan.NewIntKey("entry_count")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)
