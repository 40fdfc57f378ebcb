package attune

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when a referenced record does not exist.
// It is the one store failure that workflows surface as input validation
// rather than persistence trouble.
var ErrNotFound = errors.New("record not found")

// Entry is a stored journal entry carrying the transcript together with the
// agent outputs produced when it was recorded. Entries are immutable after
// creation.
type Entry struct {
	ID                string    `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	UserID            string    `db:"user_id" type:"text" constraints:"notnull"`
	Transcript        string    `db:"transcript" type:"text" constraints:"notnull"`
	Reflection        string    `db:"reflection" type:"text"`
	Title             string    `db:"title" type:"text"`
	Emotion           string    `db:"emotion" type:"text" constraints:"notnull"`
	SecondaryEmotions []string  `db:"secondary_emotions" type:"jsonb" default:"'[]'"`
	Themes            []string  `db:"themes" type:"jsonb" default:"'[]'"`
	Intensity         float64   `db:"intensity" type:"double precision"`
	Confidence        float64   `db:"confidence" type:"double precision"`
	Sentiment         float64   `db:"sentiment" type:"double precision"`
	WordCount         int       `db:"word_count" type:"integer"`
	Source            string    `db:"source" type:"text" constraints:"notnull"`
	CreatedAt         time.Time `db:"created_at" type:"timestamp" constraints:"notnull"`
}

// ThemeCount pairs a theme label with its mention count for a period.
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// Insight is a stored period-level summary merging statistical breakdowns
// with the model-generated narrative.
type Insight struct {
	ID                   string              `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	UserID               string              `db:"user_id" type:"text" constraints:"notnull"`
	Period               Period              `db:"period" type:"text" constraints:"notnull"`
	PeriodStart          time.Time           `db:"period_start" type:"timestamp" constraints:"notnull"`
	PeriodEnd            time.Time           `db:"period_end" type:"timestamp" constraints:"notnull"`
	Summary              string              `db:"summary" type:"text"`
	EmotionTrend         string              `db:"emotion_trend" type:"text"`
	EmotionBreakdown     map[string]float64  `db:"emotion_breakdown" type:"jsonb" default:"'{}'"`
	TopThemes            []ThemeCount        `db:"top_themes" type:"jsonb" default:"'[]'"`
	Insights             []string            `db:"insights" type:"jsonb" default:"'[]'"`
	HealthConnections    []string            `db:"health_connections" type:"jsonb" default:"'[]'"`
	Correlations         []CorrelationResult `db:"correlations" type:"jsonb" default:"'[]'"`
	SuggestedFocus       string              `db:"suggested_focus" type:"text"`
	CarryForwardQuestion string              `db:"carry_forward_question" type:"text"`
	EntryCount           int                 `db:"entry_count" type:"integer"`
	CreatedAt            time.Time           `db:"created_at" type:"timestamp" constraints:"notnull"`
}

// Store is the persistence port consumed by the orchestrator. Implementations
// own transaction discipline; each method is a single transactional call.
type Store interface {
	// CreateEntry persists a new entry and returns it with ID populated.
	CreateEntry(ctx context.Context, entry *Entry) (*Entry, error)

	// GetEntry loads an entry by ID. Missing entries report ErrNotFound.
	GetEntry(ctx context.Context, id string) (*Entry, error)

	// RecentEntries loads a user's entries created at or after since,
	// newest first.
	RecentEntries(ctx context.Context, userID string, since time.Time) ([]*Entry, error)

	// CreateInsight persists a period insight and returns it with ID populated.
	CreateInsight(ctx context.Context, insight *Insight) (*Insight, error)

	// BumpEngagement increments the user's total entry counter and moves
	// last-active to at. Streak is not stored; see Streak.
	BumpEngagement(ctx context.Context, userID string, at time.Time) error
}

// HealthStore is the health data port consumed by the orchestrator.
type HealthStore interface {
	// Latest returns the most recent health record for the user, or
	// (nil, nil) when none exists.
	Latest(ctx context.Context, userID string) (*HealthRecord, error)

	// Range returns health records for the user within [from, to],
	// newest first.
	Range(ctx context.Context, userID string, from, to time.Time) ([]*HealthRecord, error)
}

// Emotion label sets used to derive a numeric sentiment score for an entry.
var (
	positiveEmotions = map[string]bool{
		"joy": true, "gratitude": true, "calm": true, "clarity": true, "energy": true,
	}
	negativeEmotions = map[string]bool{
		"stress": true, "sadness": true, "frustration": true, "anxiety": true,
	}
)

// sentimentScore maps an assessed emotion and intensity onto [-1, 1].
// Neutral emotions score 0.
func sentimentScore(emotion string, intensity float64) float64 {
	switch {
	case positiveEmotions[emotion]:
		return 0.4 + intensity*0.4
	case negativeEmotions[emotion]:
		return -0.4 - intensity*0.3
	default:
		return 0
	}
}

// NewEntry builds an Entry from a transcript and its assessment, deriving
// title, sentiment, and word count. Secondary emotions are capped at two.
func NewEntry(userID, transcript, reflection string, a Assessment, at time.Time) *Entry {
	secondary := a.SecondaryEmotions
	if len(secondary) > 2 {
		secondary = secondary[:2]
	}
	return &Entry{
		ID:                uuid.New().String(),
		UserID:            userID,
		Transcript:        transcript,
		Reflection:        reflection,
		Title:             a.SuggestedTitle,
		Emotion:           a.Emotion,
		SecondaryEmotions: secondary,
		Themes:            a.Themes,
		Intensity:         a.Intensity,
		Confidence:        a.Confidence,
		Sentiment:         sentimentScore(a.Emotion, a.Intensity),
		WordCount:         len(strings.Fields(transcript)),
		Source:            a.Source,
		CreatedAt:         at,
	}
}
