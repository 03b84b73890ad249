package validators

import "github.com/MKhiriev/go-chat-profiles/models"

// Field name constants shared by the object schemas and the services.
const (
	FieldID             = "id"
	FieldEmail          = "email"
	FieldPassword       = "password"
	FieldUserID         = "user_id"
	FieldDisplayName    = "display_name"
	FieldBio            = "bio"
	FieldAvatarURL      = "avatar_url"
	FieldAttributes     = "attributes"
	FieldCategoryIDs    = "category_ids"
	FieldLabel          = "label"
	FieldConversationID = "conversation_id"
	FieldConversations  = "conversation_ids"
	FieldTitle          = "title"
	FieldParticipantIDs = "participant_ids"
	FieldSenderID       = "sender_id"
	FieldRecipientID    = "recipient_id"
	FieldText           = "text"
	FieldDeliveredAt    = "delivered_at"
	FieldCreatedAt      = "created_at"
	FieldUpdatedAt      = "updated_at"
)

// PasswordColumn receives the plain password after segregation; the auth
// service replaces it with a bcrypt hash before anything is stored.
const PasswordColumn = "password_hash"

// UserProfileSchema spans the profiles (primary) and users tables.
var UserProfileSchema = ObjectSchema{
	Name: "user_profile",
	Fields: []Field{
		{Name: FieldID, Table: models.ProfilesTable, Kind: models.KindString, ReadOnly: true},
		{Name: FieldEmail, Table: models.UsersTable, Kind: models.KindString, Rules: "required,email,max=254", Required: true},
		{Name: FieldPassword, Table: models.UsersTable, Column: PasswordColumn, Kind: models.KindString, Rules: "required,min=8,maxbytes=72", Required: true},
		{Name: FieldUserID, Table: models.ProfilesTable, Kind: models.KindString, ReadOnly: true},
		{Name: FieldDisplayName, Table: models.ProfilesTable, Kind: models.KindString, Rules: "required,max=64", Required: true},
		{Name: FieldBio, Table: models.ProfilesTable, Kind: models.KindString, Rules: "max=500", Default: ""},
		{Name: FieldAvatarURL, Table: models.ProfilesTable, Kind: models.KindString, Rules: "omitempty,url,max=2048", Default: ""},
		{Name: FieldAttributes, Table: models.ProfilesTable, Kind: models.KindObject, Rules: "max=32", Default: map[string]any{}},
		{Name: FieldCategoryIDs, Table: models.ProfilesTable, Kind: models.KindList, ReadOnly: true, Default: []string{}},
		{Name: FieldCreatedAt, Table: models.ProfilesTable, Kind: models.KindTime, ReadOnly: true},
		{Name: FieldUpdatedAt, Table: models.ProfilesTable, Kind: models.KindTime, ReadOnly: true},
	},
}

var CategorySchema = ObjectSchema{
	Name: "category",
	Fields: []Field{
		{Name: FieldID, Table: models.CategoriesTable, Kind: models.KindString, ReadOnly: true},
		{Name: FieldLabel, Table: models.CategoriesTable, Kind: models.KindString, Rules: "required,max=64", Required: true},
		{Name: FieldConversations, Table: models.CategoriesTable, Kind: models.KindList, ReadOnly: true, Default: []string{}},
		{Name: FieldCreatedAt, Table: models.CategoriesTable, Kind: models.KindTime, ReadOnly: true},
	},
}

// ConversationSchema leaves participants immutable after creation.
var ConversationSchema = ObjectSchema{
	Name: "conversation",
	Fields: []Field{
		{Name: FieldID, Table: models.ConversationsTable, Kind: models.KindString, ReadOnly: true},
		{Name: FieldTitle, Table: models.ConversationsTable, Kind: models.KindString, Rules: "required,max=128", Required: true},
		{Name: FieldParticipantIDs, Table: models.ConversationsTable, Kind: models.KindList, Rules: "max=100,dive,required", Immutable: true, Default: []string{}},
		{Name: FieldCreatedAt, Table: models.ConversationsTable, Kind: models.KindTime, ReadOnly: true},
		{Name: FieldUpdatedAt, Table: models.ConversationsTable, Kind: models.KindTime, ReadOnly: true},
	},
}

// MessageSchema lets the sender edit only the text after sending.
var MessageSchema = ObjectSchema{
	Name: "message",
	Fields: []Field{
		{Name: FieldID, Table: models.MessagesTable, Kind: models.KindString, ReadOnly: true},
		{Name: FieldConversationID, Table: models.MessagesTable, Kind: models.KindString, Rules: "required", Required: true, Immutable: true},
		{Name: FieldSenderID, Table: models.MessagesTable, Kind: models.KindString, ReadOnly: true},
		{Name: FieldRecipientID, Table: models.MessagesTable, Kind: models.KindString, Rules: "required", Required: true, Immutable: true},
		{Name: FieldText, Table: models.MessagesTable, Kind: models.KindString, Rules: "required,max=4000", Required: true},
		{Name: FieldDeliveredAt, Table: models.MessagesTable, Kind: models.KindTime, ReadOnly: true, Nullable: true},
		{Name: FieldCreatedAt, Table: models.MessagesTable, Kind: models.KindTime, ReadOnly: true},
	},
}
