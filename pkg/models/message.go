package models

// Message is one entry in a contact's conversation. Entries are ordered by
// creation time; edits mutate Text in place and set Edited, deletion is
// recorded in the store as an appended tombstone version with Deleted set.
type Message struct {
	ID         string      `json:"id"`
	Contact    string      `json:"contact"`
	Sender     string      `json:"sender,omitempty"`
	Text       string      `json:"text,omitempty"`
	TS         int64       `json:"ts"`
	TimeLabel  string      `json:"time_label,omitempty"`
	Own        bool        `json:"own,omitempty"`
	Edited     bool        `json:"edited,omitempty"`
	Deleted    bool        `json:"deleted,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Attachment describes a file staged with or sent in a message. Kind is
// "image" when the source MIME type has an image/ prefix, else "file".
type Attachment struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	URL       string `json:"url,omitempty"`
	SizeLabel string `json:"size_label,omitempty"`
}

const (
	AttachmentImage = "image"
	AttachmentFile  = "file"
)
