package review

import (
	"math"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
)

const (
	minRating  = 0
	maxRating  = 10
	minYear    = 1888
	maxYear    = 2100
	minRuntime = 50
	maxRuntime = 300

	maxGenres        = 6
	maxCast          = 8
	maxPeopleLikeYou = 5
	maxSources       = 5

	quoteChars = "\"'`“”‘’"
)

// CleanText strips NUL characters, collapses whitespace runs to one space and trims the ends
func CleanText(s string) string {
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return strings.Join(strings.Fields(s), " ")
}

// Sanitize turns an untrusted review object into a display-ready ReviewResult.
// It never fails: missing or mistyped fields degrade to their zero values
// before range clamping.
func Sanitize(raw RawObject) models.ReviewResult {
	return SanitizeReview(reviewFromRaw(raw))
}

// SanitizeReview applies the sanitization rules to a typed review.
// Applying it twice yields the same value as applying it once.
func SanitizeReview(r models.ReviewResult) models.ReviewResult {
	return models.ReviewResult{
		Title:          CleanText(r.Title),
		Year:           clampInt(r.Year, minYear, maxYear),
		Genres:         cleanList(r.Genres, maxGenres),
		RuntimeMinutes: clampInt(r.RuntimeMinutes, minRuntime, maxRuntime),
		Rating:         clampRating(r.Rating),
		Cast:           cleanCast(r.Cast),
		ShortPlot:      CleanText(r.ShortPlot),
		Summary:        CleanText(r.Summary),
		Verdict:        CleanText(r.Verdict),
		PeopleLikeYou:  cleanList(r.PeopleLikeYou, maxPeopleLikeYou),
		Sources:        cleanSources(r.Sources),
		IsGeneric:      r.IsGeneric,
	}
}

func clampRating(r float64) float64 {
	if math.IsNaN(r) {
		return minRating
	}
	return math.Max(minRating, math.Min(maxRating, r))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// cleanList applies CleanText to every entry, drops empties and duplicates, and caps the length
func cleanList(entries []string, limit int) []string {
	out := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		text := CleanText(entry)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
		if len(out) == limit {
			break
		}
	}
	return out
}

// cleanCast splits comma-joined names, strips surrounding quotes and dedups in first-seen order
func cleanCast(entries []string) []string {
	out := make([]string, 0, maxCast)
	seen := make(map[string]bool)
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			name := cleanName(part)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
			if len(out) == maxCast {
				return out
			}
		}
	}
	return out
}

func cleanName(s string) string {
	for {
		t := strings.Trim(CleanText(s), quoteChars)
		if t == s {
			return t
		}
		s = t
	}
}

func cleanSources(entries []models.Source) []models.Source {
	out := make([]models.Source, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		src := models.Source{
			Source: CleanText(entry.Source),
			URL:    CleanText(entry.URL),
			Note:   CleanText(entry.Note),
		}
		key := src.Source + "\x00" + src.URL
		if src.Source == "" || src.URL == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, src)
		if len(out) == maxSources {
			break
		}
	}
	return out
}

func reviewFromRaw(raw RawObject) models.ReviewResult {
	runtime := raw["runtime"]
	if runtime == nil {
		runtime = raw["runtimeMinutes"]
	}
	rating, _ := asNumber(raw["rating"])

	return models.ReviewResult{
		Title:          asString(raw["title"]),
		Year:           asInt(raw["year"], minYear, maxYear),
		Genres:         asStringList(raw["genres"]),
		RuntimeMinutes: asInt(runtime, minRuntime, maxRuntime),
		Rating:         rating,
		Cast:           asStringList(raw["cast"]),
		ShortPlot:      asString(raw["shortPlot"]),
		Summary:        asString(raw["summary"]),
		Verdict:        asString(raw["verdict"]),
		PeopleLikeYou:  asStringList(raw["peopleLikeYou"]),
		Sources:        asSources(raw["sources"]),
		IsGeneric:      asBool(raw["isGeneric"]),
	}
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

func asNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) {
			return 0, false
		}
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asInt rounds a numeric value after clamping it, so huge inputs never overflow
func asInt(v any, lo, hi int) int {
	f, ok := asNumber(v)
	if !ok {
		return 0
	}
	return int(math.Round(math.Max(float64(lo), math.Min(float64(hi), f))))
}

func asBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "true")
	default:
		return false
	}
}

func asStringList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, asString(item))
		}
		return out
	case string:
		return []string{val}
	default:
		return nil
	}
}

func asSources(v any) []models.Source {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]models.Source, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, models.Source{
			Source: asString(obj["source"]),
			URL:    asString(obj["url"]),
			Note:   asString(obj["note"]),
		})
	}
	return out
}
