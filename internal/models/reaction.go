package models

import "time"

// Reaction is a single emoji reaction by one user on one message.
// At most one row exists per (message, user, reaction); sending the
// same reaction again removes it.
type Reaction struct {
	ID        int64     `json:"id" db:"id"`
	MessageID int64     `json:"message_id" db:"message_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Reaction  string    `json:"reaction" db:"reaction"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AllowedReactions is the fixed emoji set clients may react with.
var AllowedReactions = []string{"👍", "❤️", "😂", "😮", "😢", "😡", "👏", "🔥"}

// IsAllowedReaction reports whether r is in the allow-list.
func IsAllowedReaction(r string) bool {
	for _, a := range AllowedReactions {
		if a == r {
			return true
		}
	}
	return false
}
