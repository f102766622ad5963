package llm

const (
	// Review bounds
	yearMin          = 1888
	yearMax          = 2100
	runtimeMin       = 50
	runtimeMax       = 300
	ratingMin        = 0
	ratingMax        = 10
	genresMax        = 6
	castMin          = 2
	castMax          = 8
	peopleLikeYouMin = 2
	peopleLikeYouMax = 5
	sourcesMax       = 5

	// Schema names
	ReviewSchemaName       = "movie_review"
	TasteProfileSchemaName = "taste_profile"
)

// ReviewSchema returns the output schema of a review generation
func ReviewSchema() *OutputSchema {
	return &OutputSchema{
		Name:        ReviewSchemaName,
		Description: "Personalized movie review with cast, plot, verdict and sources",
		Schema:      GetReviewOutputSchema(),
	}
}

// TasteProfileSchema returns the output schema of a swipe analysis
func TasteProfileSchema() *OutputSchema {
	return &OutputSchema{
		Name:        TasteProfileSchemaName,
		Description: "Viewer taste profile inferred from liked and disliked movies",
		Schema:      GetTasteProfileOutputSchema(),
	}
}

// GetReviewOutputSchema returns the JSON schema for a review.
// OpenAI strict mode requires additionalProperties: false and every property listed in required.
func GetReviewOutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":         map[string]any{"type": "string"},
			"year":          map[string]any{"type": "integer", "minimum": yearMin, "maximum": yearMax},
			"genres":        stringArray(1, genresMax),
			"runtime":       map[string]any{"type": "integer", "minimum": runtimeMin, "maximum": runtimeMax},
			"rating":        map[string]any{"type": "number", "minimum": ratingMin, "maximum": ratingMax},
			"cast":          stringArray(castMin, castMax),
			"shortPlot":     map[string]any{"type": "string"},
			"summary":       map[string]any{"type": "string"},
			"verdict":       map[string]any{"type": "string"},
			"peopleLikeYou": stringArray(peopleLikeYouMin, peopleLikeYouMax),
			"sources": map[string]any{
				"type":     "array",
				"maxItems": sourcesMax,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"source": map[string]any{"type": "string"},
						"url":    map[string]any{"type": "string"},
						"note":   map[string]any{"type": "string"},
					},
					"required":             []string{"source", "url", "note"},
					"additionalProperties": false,
				},
			},
			"isGeneric": map[string]any{"type": "boolean"},
		},
		"required": []string{
			"title", "year", "genres", "runtime", "rating", "cast",
			"shortPlot", "summary", "verdict", "peopleLikeYou", "sources", "isGeneric",
		},
		"additionalProperties": false,
	}
}

// GetTasteProfileOutputSchema returns the JSON schema for a taste profile
func GetTasteProfileOutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"personaLabel":   map[string]any{"type": "string"},
			"tasteThesis":    map[string]any{"type": "string"},
			"greenFlags":     stringArray(1, 5),
			"dealbreakers":   stringArray(1, 4),
			"tradeoffs":      stringArray(1, 4),
			"reviewLevers":   stringArray(2, 6),
			"usuallyLike":    stringArray(1, 5),
			"usuallyAvoid":   stringArray(1, 4),
			"dependsOn":      stringArray(1, 3),
			"recommendation": map[string]any{"type": "string"},
			"confidence":     map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
		},
		"required": []string{
			"personaLabel", "tasteThesis", "greenFlags", "dealbreakers", "tradeoffs", "reviewLevers",
			"usuallyLike", "usuallyAvoid", "dependsOn", "recommendation", "confidence",
		},
		"additionalProperties": false,
	}
}

func stringArray(minItems, maxItems int) map[string]any {
	return map[string]any{
		"type":     "array",
		"items":    map[string]any{"type": "string"},
		"minItems": minItems,
		"maxItems": maxItems,
	}
}
