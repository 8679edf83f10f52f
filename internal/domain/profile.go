package domain

import "time"

// Preferred response tones.
const (
	ToneCasual       = "casual"
	ToneFormal       = "formal"
	ToneEnthusiastic = "enthusiastic"
	ToneAnalytical   = "analytical"
)

// TasteVector tracks how much a user likes a single genre. Weight and
// Confidence stay clamped to [0,1]; Interactions only grows.
type TasteVector struct {
	Weight       float64   `json:"weight" bson:"weight"`
	Confidence   float64   `json:"confidence" bson:"confidence"`
	LastUpdated  time.Time `json:"last_updated" bson:"lastUpdated"`
	Interactions int       `json:"interactions" bson:"interactions"`
}

// LearningParams tune how fast the taste vectors move. Read-only to the
// recommendation pipeline.
type LearningParams struct {
	DecayRate       float64 `json:"decay_rate" bson:"decayRate"`
	LearningRate    float64 `json:"learning_rate" bson:"learningRate"`
	ExplorationRate float64 `json:"exploration_rate" bson:"explorationRate"`
}

// InteractionStats accumulates chat behavior per user.
type InteractionStats struct {
	TotalInteractions int     `json:"total_interactions" bson:"totalInteractions"`
	PositiveFeedback  int     `json:"positive_feedback" bson:"positiveFeedback"`
	NegativeFeedback  int     `json:"negative_feedback" bson:"negativeFeedback"`
	AvgResponseLength float64 `json:"avg_response_length" bson:"avgResponseLength"`
	PreferredTone     string  `json:"preferred_tone" bson:"preferredTone"`
	EngagementScore   float64 `json:"engagement_score" bson:"engagementScore"`
}

// Profile is the single per-user document persisted in MongoDB. The
// recommendation pipeline mutates an in-memory copy; the caller writes it
// back after the pipeline completes.
type Profile struct {
	UserID       int64                   `json:"user_id" bson:"userId"`
	TasteVectors map[string]*TasteVector `json:"taste_vectors" bson:"tasteVectors"`
	Learning     LearningParams          `json:"learning_params" bson:"learningParams"`
	Stats        InteractionStats        `json:"interaction_stats" bson:"interactionStats"`
	RecentThemes []string                `json:"recent_themes" bson:"recentThemes"`
	UpdatedAt    time.Time               `json:"updated_at" bson:"updatedAt"`
}

// NewProfile returns a profile with the default learning parameters.
func NewProfile(userID int64) *Profile {
	return &Profile{
		UserID:       userID,
		TasteVectors: make(map[string]*TasteVector),
		Learning: LearningParams{
			DecayRate:       0.95,
			LearningRate:    0.3,
			ExplorationRate: 0.2,
		},
		Stats: InteractionStats{
			AvgResponseLength: 150,
			PreferredTone:     ToneCasual,
		},
		UpdatedAt: time.Now(),
	}
}
