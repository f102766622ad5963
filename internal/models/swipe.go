package models

// MovieSignal is a movie the viewer liked or disliked
type MovieSignal struct {
	Title   string   `json:"title" validate:"required"`
	Year    int      `json:"year"`
	Genres  []string `json:"genres"`
	Runtime int      `json:"runtime"`
	Mood    string   `json:"mood"`
	Setup   string   `json:"setup"`
}

// SwipeRequest is the body accepted by the swipe analysis endpoint
type SwipeRequest struct {
	Likes    []MovieSignal  `json:"likes" validate:"dive"`
	Dislikes []MovieSignal  `json:"dislikes" validate:"dive"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Settings ReviewSettings `json:"settings"`
}

// Confidence levels of a taste profile
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// TasteProfile summarises a viewer's inferred movie taste
type TasteProfile struct {
	PersonaLabel   string   `json:"personaLabel"`
	TasteThesis    string   `json:"tasteThesis"`
	GreenFlags     []string `json:"greenFlags"`
	Dealbreakers   []string `json:"dealbreakers"`
	Tradeoffs      []string `json:"tradeoffs"`
	ReviewLevers   []string `json:"reviewLevers"`
	UsuallyLike    []string `json:"usuallyLike"`
	UsuallyAvoid   []string `json:"usuallyAvoid"`
	DependsOn      []string `json:"dependsOn"`
	Recommendation string   `json:"recommendation"`
	Confidence     string   `json:"confidence"`
}
