package models

import "time"

// Category is a labelled group of conversations. Profiles reference
// categories through their category_ids list.
type Category struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	ConversationIDs []string  `json:"conversation_ids"`
	CreatedAt       time.Time `json:"created_at"`
}

// CategoryFromRecord converts a categories row.
func CategoryFromRecord(r Record) Category {
	return Category{
		ID:              r.ID(),
		Label:           r.String("label"),
		ConversationIDs: nonNilList(r.Strings("conversation_ids")),
		CreatedAt:       r.Time("created_at"),
	}
}

// CategoriesFromRecords converts a list of categories rows.
func CategoriesFromRecords(records []Record) []Category {
	out := make([]Category, 0, len(records))
	for _, r := range records {
		out = append(out, CategoryFromRecord(r))
	}
	return out
}
