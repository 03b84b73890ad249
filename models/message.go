package models

import "time"

// Message is a single text sent by one participant of a conversation to another.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	RecipientID    string `json:"recipient_id"`
	Text           string `json:"text"`
	// DeliveredAt is nil until the recipient acknowledges the message.
	DeliveredAt *time.Time `json:"delivered_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MessageFromRecord converts a messages row.
func MessageFromRecord(r Record) Message {
	return Message{
		ID:             r.ID(),
		ConversationID: r.String("conversation_id"),
		SenderID:       r.String("sender_id"),
		RecipientID:    r.String("recipient_id"),
		Text:           r.String("text"),
		DeliveredAt:    r.TimePtr("delivered_at"),
		CreatedAt:      r.Time("created_at"),
	}
}

// MessagesFromRecords converts a list of messages rows.
func MessagesFromRecords(records []Record) []Message {
	out := make([]Message, 0, len(records))
	for _, r := range records {
		out = append(out, MessageFromRecord(r))
	}
	return out
}
