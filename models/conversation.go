package models

import "time"

// Conversation is a chat between participant profiles.
type Conversation struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	ParticipantIDs []string  `json:"participant_ids"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasParticipant reports whether profileID takes part in the conversation.
func (c Conversation) HasParticipant(profileID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == profileID {
			return true
		}
	}
	return false
}

// ConversationView is the read model of a single conversation:
// the conversation itself plus its participant profiles and messages.
type ConversationView struct {
	Conversation
	Participants []UserProfile `json:"participants"`
	Messages     []Message     `json:"messages"`
}

// ConversationFromRecord converts a conversations row.
func ConversationFromRecord(r Record) Conversation {
	return Conversation{
		ID:             r.ID(),
		Title:          r.String("title"),
		ParticipantIDs: nonNilList(r.Strings("participant_ids")),
		CreatedAt:      r.Time("created_at"),
		UpdatedAt:      r.Time("updated_at"),
	}
}

// ConversationsFromRecords converts a list of conversations rows.
func ConversationsFromRecords(records []Record) []Conversation {
	out := make([]Conversation, 0, len(records))
	for _, r := range records {
		out = append(out, ConversationFromRecord(r))
	}
	return out
}
