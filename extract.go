package attune

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNoJSON is returned when no parseable JSON object can be recovered
// from a model response.
var ErrNoJSON = errors.New("no JSON object in model response")

// ExtractObject recovers a JSON object from unstructured model output and
// decodes it into out. Models wrap JSON in prose, code fences, or trailing
// commentary; the recovery strategy is to take the substring from the first
// '{' to the last '}' and decode that. If the substring is malformed it is
// run through jsonrepair once before giving up.
//
// This is the only recovery technique for model output in the package; every
// agent that expects structured output goes through it, so fallback behavior
// is uniform.
func ExtractObject(raw string, out any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: %q", ErrNoJSON, truncate(raw, 80))
	}

	candidate := raw[start : end+1]
	if err := json.Unmarshal([]byte(candidate), out); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return fmt.Errorf("%w: repair failed: %v", ErrNoJSON, err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return nil
}

// truncate bounds s to max characters for prompt embedding and error text.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
