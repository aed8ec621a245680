package session

import "clinichat/pkg/models"

// Snapshot is a read-only view of the session for renderers.
type Snapshot struct {
	User           models.User       `json:"user"`
	Selection      string            `json:"selection"`
	Candidate      string            `json:"candidate,omitempty"`
	Selected       string            `json:"selected,omitempty"`
	Composer       string            `json:"composer"`
	EditingID      string            `json:"editing_id,omitempty"`
	Staged         *StagedAttachment `json:"staged,omitempty"`
	Pending        *PendingAction    `json:"pending,omitempty"`
	EmojiOpen      bool              `json:"emoji_open"`
	MenuMessageID  string            `json:"menu_message_id,omitempty"`
	HeaderMenuOpen bool              `json:"header_menu_open"`
	Contacts       []models.Contact  `json:"contacts"`
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		User:           s.user,
		Selection:      s.selection.State.String(),
		Candidate:      s.selection.Candidate,
		Selected:       s.selection.Selected,
		Composer:       s.composer,
		EditingID:      s.editingID,
		EmojiOpen:      s.emojiOpen,
		MenuMessageID:  s.menuMessageID,
		HeaderMenuOpen: s.headerMenuOpen,
		Contacts:       make([]models.Contact, len(s.contacts)),
	}
	copy(snap.Contacts, s.contacts)
	if s.staged != nil {
		a := *s.staged
		snap.Staged = &a
	}
	if s.pending != nil {
		p := *s.pending
		snap.Pending = &p
	}
	return snap
}
