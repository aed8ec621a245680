package models

// Presence values for a directory contact.
const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
)

// Contact categories. The directory merges two external record sets and
// tags every entry with the set it came from.
const (
	CategoryStaff     = "staff"
	CategoryReception = "reception"
)

// Contact is a chat-capable directory entry. ID is the external record id;
// Unread is carried across directory rebuilds by id and is only reset by a
// confirmed entry into the contact's conversation.
type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Presence  string `json:"presence"`
	LastSeen  string `json:"last_seen,omitempty"`
	Category  string `json:"category"`
	Unread    int    `json:"unread"`
}

// User is the active identity supplied by the identity provider. The core
// only reads it.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}
