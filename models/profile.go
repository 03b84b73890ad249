package models

import "time"

// Profile is the public part of an account: display data, free-form
// attributes and category links. Every Profile references exactly one [User].
type Profile struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	DisplayName string         `json:"display_name"`
	Bio         string         `json:"bio"`
	AvatarURL   string         `json:"avatar_url"`
	Attributes  map[string]any `json:"attributes"`
	CategoryIDs []string       `json:"category_ids"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UserProfile is the logical join of a profiles row (primary) and its users row.
// It is what the API exposes as "a profile".
type UserProfile struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	Bio         string         `json:"bio"`
	AvatarURL   string         `json:"avatar_url"`
	Attributes  map[string]any `json:"attributes"`
	CategoryIDs []string       `json:"category_ids"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// UserID links the profile to its credentials. Kept server side.
	UserID string `json:"-"`
}

// UserProfileFromRecord converts a composed UserProfile object.
func UserProfileFromRecord(r Record) UserProfile {
	return UserProfile{
		ID:          r.ID(),
		UserID:      r.String("user_id"),
		Email:       r.String("email"),
		DisplayName: r.String("display_name"),
		Bio:         r.String("bio"),
		AvatarURL:   r.String("avatar_url"),
		Attributes:  nonNilObject(r.Object("attributes")),
		CategoryIDs: nonNilList(r.Strings("category_ids")),
		CreatedAt:   r.Time("created_at"),
		UpdatedAt:   r.Time("updated_at"),
	}
}

// UserProfilesFromRecords converts a list of composed UserProfile objects.
func UserProfilesFromRecords(records []Record) []UserProfile {
	out := make([]UserProfile, 0, len(records))
	for _, r := range records {
		out = append(out, UserProfileFromRecord(r))
	}
	return out
}

func nonNilList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func nonNilObject(obj map[string]any) map[string]any {
	if obj == nil {
		return map[string]any{}
	}
	return obj
}
