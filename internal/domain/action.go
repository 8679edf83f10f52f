package domain

// Action is a user signal on an anime, recorded from the UI or replayed
// from a MyAnimeList import.
type Action string

const (
	ActionWatched   Action = "watched"
	ActionCompleted Action = "completed"
	ActionRatedHigh Action = "rated_high"
	ActionRatedLow  Action = "rated_low"
	ActionDropped   Action = "dropped"
	ActionSaved     Action = "saved"
	ActionIgnored   Action = "ignored"
)
