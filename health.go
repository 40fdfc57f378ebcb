package attune

import "time"

// Health sub-records as stored by upstream providers. Sources nest metrics
// under structured objects; the accessors below normalize them to the flat
// numeric fields the core works with.
type (
	// SleepData is the structured sleep form (wearable imports).
	SleepData struct {
		DurationMinutes float64 `json:"duration_minutes"`
		Quality         float64 `json:"quality"`
		DeepMinutes     float64 `json:"deep_sleep_minutes"`
	}

	// HeartData carries heart metrics, of which only HRV is consumed here.
	HeartData struct {
		RestingHR float64 `json:"resting_hr"`
		AverageHR float64 `json:"average_hr"`
		HRV       float64 `json:"hrv"`
	}

	// ActivityData carries movement metrics.
	ActivityData struct {
		Steps         float64 `json:"steps"`
		ActiveMinutes float64 `json:"active_minutes"`
		Calories      float64 `json:"calories_burned"`
	}

	// RecoveryData carries readiness metrics.
	RecoveryData struct {
		Score     float64 `json:"score"`
		Strain    float64 `json:"strain"`
		Readiness float64 `json:"readiness"`
	}
)

// HealthRecord is one day of health data for a user. Every metric is
// optional: nested objects may be absent, and sleep may arrive either as a
// structured duration-in-minutes object or as a flat hours value.
type HealthRecord struct {
	ID         string        `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	UserID     string        `db:"user_id" type:"text" constraints:"notnull"`
	Date       time.Time     `db:"date" type:"timestamp" constraints:"notnull"`
	Source     string        `db:"source" type:"text"`
	Sleep      *SleepData    `db:"sleep" type:"jsonb"`
	SleepHours float64       `db:"sleep_hours" type:"double precision"`
	Heart      *HeartData    `db:"heart" type:"jsonb"`
	Activity   *ActivityData `db:"activity" type:"jsonb"`
	Recovery   *RecoveryData `db:"recovery" type:"jsonb"`
	CreatedAt  time.Time     `db:"created_at" type:"timestamp" constraints:"notnull"`
}

// Hours returns sleep duration in hours, preferring the structured form.
// ok is false when the record carries no sleep data.
func (h *HealthRecord) Hours() (hours float64, ok bool) {
	if h.Sleep != nil && h.Sleep.DurationMinutes > 0 {
		return h.Sleep.DurationMinutes / 60, true
	}
	if h.SleepHours > 0 {
		return h.SleepHours, true
	}
	return 0, false
}

// HRV returns heart-rate variability when present.
func (h *HealthRecord) HRV() (float64, bool) {
	if h.Heart != nil && h.Heart.HRV > 0 {
		return h.Heart.HRV, true
	}
	return 0, false
}

// RecoveryScore returns the recovery score when present.
func (h *HealthRecord) RecoveryScore() (float64, bool) {
	if h.Recovery != nil && h.Recovery.Score > 0 {
		return h.Recovery.Score, true
	}
	return 0, false
}

// Flags renders the record as short qualitative markers for prompt context.
// Values inside the unremarkable middle bands produce no flag.
func (h *HealthRecord) Flags() []string {
	var flags []string
	if hours, ok := h.Hours(); ok {
		if hours < 6 {
			flags = append(flags, "low sleep")
		} else if hours > 8 {
			flags = append(flags, "good sleep")
		}
	}
	if hrv, ok := h.HRV(); ok {
		if hrv < 30 {
			flags = append(flags, "low HRV (possible stress)")
		} else if hrv > 50 {
			flags = append(flags, "healthy HRV")
		}
	}
	if score, ok := h.RecoveryScore(); ok {
		if score < 50 {
			flags = append(flags, "low recovery")
		} else if score > 75 {
			flags = append(flags, "good recovery")
		}
	}
	return flags
}
