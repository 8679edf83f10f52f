package domain

// Intent categorizes what a chat message is asking for.
type Intent string

const (
	IntentRecommendation Intent = "recommendation"
	IntentDiscovery      Intent = "discovery"
	IntentMoodBased      Intent = "mood_based"
	IntentComparison     Intent = "comparison"
	IntentChat           Intent = "chat"
)

// Classification is the ephemeral result of intent detection.
type Classification struct {
	Intent      Intent   `json:"intent"`
	Confidence  float64  `json:"confidence"`
	TriggeredBy []string `json:"triggered_by"`
}
