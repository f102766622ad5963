package review

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
)

// RawObject is a structurally valid, still untrusted, JSON object
type RawObject map[string]any

var errNotObject = errors.New("model output is not a JSON object")

// ParseObject reads raw agent text as a JSON object. When the text is not
// valid JSON, the substring between the first '{' and the last '}' is tried
// once before giving up with a ParseError.
func ParseObject(raw string) (RawObject, error) {
	obj, err := decodeObject(raw)
	if err == nil {
		return obj, nil
	}

	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first < 0 || last <= first {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	obj, err = decodeObject(raw[first : last+1])
	if err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return obj, nil
}

func decodeObject(text string) (RawObject, error) {
	var value any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &value); err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return RawObject(obj), nil
}

// ParseReview parses raw agent text and sanitizes it into a ReviewResult
func ParseReview(raw string) (models.ReviewResult, error) {
	obj, err := ParseObject(raw)
	if err != nil {
		return models.ReviewResult{}, err
	}
	return Sanitize(obj), nil
}

// ParseTasteProfile parses raw agent text and sanitizes it into a TasteProfile
func ParseTasteProfile(raw string) (models.TasteProfile, error) {
	obj, err := ParseObject(raw)
	if err != nil {
		return models.TasteProfile{}, err
	}
	return SanitizeTasteProfile(tasteFromRaw(obj)), nil
}
