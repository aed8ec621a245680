package conversation

import (
	"time"

	"clinichat/pkg/logger"
	"clinichat/pkg/models"
	"clinichat/pkg/store"
)

// Map holds per-contact ordered message lists. Absence of a key is an empty
// conversation. With persist set, every mutation writes through to the
// record store and Load can rehydrate after a restart; without it the map
// is memory-only and a restart loses history.
//
// All mutation is serialized by the owning session; Map itself does no
// locking.
type Map struct {
	conversations map[string][]models.Message
	persist       bool
}

func NewMap(persist bool) *Map {
	return &Map{conversations: map[string][]models.Message{}, persist: persist}
}

// List returns the contact's messages in insertion order (oldest first).
// The returned slice is the live list; callers must not retain it across
// mutations.
func (m *Map) List(contactID string) []models.Message {
	return m.conversations[contactID]
}

// Append adds a message to the end of the contact's conversation.
func (m *Map) Append(contactID string, msg models.Message) {
	m.conversations[contactID] = append(m.conversations[contactID], msg)
	if m.persist {
		if err := store.AppendMessage(contactID, msg); err != nil {
			logger.Warn("persist_append_failed", "contact", contactID, "id", msg.ID, "error", err)
		}
	}
}

// Edit replaces the message's text in place and marks it edited. The id and
// sender are retained and the list length is unchanged. Unknown ids are a
// no-op returning false.
func (m *Map) Edit(contactID, msgID, text string) bool {
	list := m.conversations[contactID]
	for i := range list {
		if list[i].ID == msgID {
			list[i].Text = text
			list[i].Edited = true
			if m.persist {
				if err := store.AppendMessage(contactID, list[i]); err != nil {
					logger.Warn("persist_edit_failed", "contact", contactID, "id", msgID, "error", err)
				}
			}
			return true
		}
	}
	return false
}

// Delete removes the message from the live list. The persisted history
// keeps an appended tombstone version so the sweeper can purge it later. A
// deleted message no longer participates in "latest" computations.
func (m *Map) Delete(contactID, msgID string) bool {
	list := m.conversations[contactID]
	for i := range list {
		if list[i].ID == msgID {
			tomb := list[i]
			m.conversations[contactID] = append(list[:i], list[i+1:]...)
			if m.persist {
				tomb.Deleted = true
				// the sweeper ages tombstones by TS, so it must carry the
				// deletion time, not the creation time
				tomb.TS = time.Now().UTC().UnixNano()
				if err := store.AppendMessage(contactID, tomb); err != nil {
					logger.Warn("persist_delete_failed", "contact", contactID, "id", msgID, "error", err)
				}
			}
			return true
		}
	}
	return false
}

// Clear empties the contact's conversation.
func (m *Map) Clear(contactID string) {
	delete(m.conversations, contactID)
	if m.persist {
		if err := store.ClearConversation(contactID); err != nil {
			logger.Warn("persist_clear_failed", "contact", contactID, "error", err)
		}
	}
}

// Load hydrates the contact's conversation from the record store. Memory
// state wins when already present.
func (m *Map) Load(contactID string) {
	if !m.persist {
		return
	}
	if _, ok := m.conversations[contactID]; ok {
		return
	}
	msgs, err := store.ListMessages(contactID)
	if err != nil {
		logger.Warn("conversation_load_failed", "contact", contactID, "error", err)
		return
	}
	if len(msgs) > 0 {
		m.conversations[contactID] = msgs
	}
}
