package models

// Table names of the hosted store.
const (
	UsersTable         = "users"
	ProfilesTable      = "profiles"
	CategoriesTable    = "categories"
	ConversationsTable = "conversations"
	MessagesTable      = "messages"
	RefreshTokensTable = "refresh_tokens"
)

var (
	// Users holds credentials. It is the secondary table of a UserProfile.
	Users = Table{Name: UsersTable, Columns: []Column{
		{Name: "id", Kind: KindString},
		{Name: "email", Kind: KindString, Unique: true},
		{Name: "password_hash", Kind: KindString},
		{Name: "created_at", Kind: KindTime},
	}}

	// Profiles is the primary table of a UserProfile.
	Profiles = Table{Name: ProfilesTable, Columns: []Column{
		{Name: "id", Kind: KindString},
		{Name: "user_id", Kind: KindString, Unique: true},
		{Name: "display_name", Kind: KindString},
		{Name: "bio", Kind: KindString},
		{Name: "avatar_url", Kind: KindString},
		{Name: "attributes", Kind: KindObject},
		{Name: "category_ids", Kind: KindList},
		{Name: "created_at", Kind: KindTime},
		{Name: "updated_at", Kind: KindTime},
	}}

	Categories = Table{Name: CategoriesTable, Columns: []Column{
		{Name: "id", Kind: KindString},
		{Name: "label", Kind: KindString, Unique: true},
		{Name: "conversation_ids", Kind: KindList},
		{Name: "created_at", Kind: KindTime},
	}}

	Conversations = Table{Name: ConversationsTable, Columns: []Column{
		{Name: "id", Kind: KindString},
		{Name: "title", Kind: KindString},
		{Name: "participant_ids", Kind: KindList},
		{Name: "created_at", Kind: KindTime},
		{Name: "updated_at", Kind: KindTime},
	}}

	Messages = Table{Name: MessagesTable, Columns: []Column{
		{Name: "id", Kind: KindString},
		{Name: "conversation_id", Kind: KindString},
		{Name: "sender_id", Kind: KindString},
		{Name: "recipient_id", Kind: KindString},
		{Name: "text", Kind: KindString},
		{Name: "delivered_at", Kind: KindTime, Nullable: true},
		{Name: "created_at", Kind: KindTime},
	}}

	// RefreshTokens stores HMAC hashes of issued refresh tokens, never the tokens.
	RefreshTokens = Table{Name: RefreshTokensTable, Columns: []Column{
		{Name: "id", Kind: KindString},
		{Name: "user_id", Kind: KindString},
		{Name: "token_hash", Kind: KindString, Unique: true},
		{Name: "expires_at", Kind: KindTime},
		{Name: "created_at", Kind: KindTime},
	}}
)

// AllTables lists every table in creation order.
var AllTables = []Table{Users, Profiles, Categories, Conversations, Messages, RefreshTokens}

// TableByName returns the declaration of the named table.
func TableByName(name string) (Table, bool) {
	for _, t := range AllTables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
