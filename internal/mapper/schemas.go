package mapper

import "github.com/MKhiriev/go-chat-profiles/models"

// Object schemas of the chat backend.
var (
	// UserProfileSchema joins profiles (primary) with users. Only the email is
	// merged, so password hashes never reach the object.
	UserProfileSchema = Schema{
		Name:    "user_profile",
		Primary: models.Profiles,
		Links: []Link{
			{Table: models.Users, ForeignKey: "user_id", Fields: []string{"email"}},
		},
	}

	CategorySchema     = Schema{Name: "category", Primary: models.Categories}
	ConversationSchema = Schema{Name: "conversation", Primary: models.Conversations}
	MessageSchema      = Schema{Name: "message", Primary: models.Messages}
)
