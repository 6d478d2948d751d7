package domain

// Broadcast event names. EventUserUpdate carries an Action discriminator;
// the remaining names originate from the participant-facing service and are
// relayed to observers verbatim.
const (
	EventUserUpdate     = "user:update"
	EventUserJoined     = "user:joined"
	EventAttemptStarted = "user:attemptStarted"
	EventScoreUpdated   = "user:scoreUpdated"
)

// Actions carried by EventUserUpdate payloads.
const (
	ActionDeleted     = "deleted"
	ActionUpdated     = "updated"
	ActionBulkDeleted = "bulk-deleted"
	ActionQuizUpdated = "quiz-updated"
	ActionQuizDeleted = "quiz-deleted"
)

// Event is one message published to connected observers.
type Event struct {
	Name    string `json:"type"`
	Payload any    `json:"payload"`
}

// UserUpdatePayload is the payload of every EventUserUpdate event; fields
// beyond Action are populated per action.
type UserUpdatePayload struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Part   string `json:"part,omitempty"`
	QuizID string `json:"quizId,omitempty"`
	Count  int    `json:"count,omitempty"`
}
