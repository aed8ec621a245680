package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"clinichat/pkg/conversation"
	"clinichat/pkg/directory"
	"clinichat/pkg/logger"
	"clinichat/pkg/metrics"
	"clinichat/pkg/models"
	"clinichat/pkg/notify"
	"clinichat/pkg/store"
	"clinichat/pkg/utils"
)

// Pending destructive action kinds. Destructive actions are staged first and
// only applied on explicit confirmation; cancelling leaves state unchanged.
const (
	ActionDeleteMessage     = "delete_message"
	ActionClearConversation = "clear_conversation"
)

// StagedAttachment is a file selected in the composer but not yet sent.
type StagedAttachment struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Size int64  `json:"size"`
	URL  string `json:"url,omitempty"`
}

// PendingAction is a staged destructive action awaiting confirmation.
type PendingAction struct {
	Kind      string `json:"kind"`
	MessageID string `json:"message_id,omitempty"`
}

// Session is the application state behind the messaging screen: the contact
// directory, the per-contact conversations and the transient UI state
// (selection, composer, panels). Every transition is a method; all methods
// serialize through one mutex, the moral equivalent of the single UI event
// loop the state was designed for. No method blocks.
type Session struct {
	mu sync.Mutex

	user          models.User
	selection     models.Selection
	contacts      []models.Contact
	conversations *conversation.Map

	composer  string
	staged    *StagedAttachment
	editingID string
	pending   *PendingAction

	emojiOpen      bool
	menuMessageID  string
	headerMenuOpen bool

	maxAttachment int64
	now           func() time.Time
}

// New builds a session for the given user and performs the initial
// directory build.
func New(user models.User, persistHistory bool, maxAttachment int64) *Session {
	s := &Session{
		user:          user,
		conversations: conversation.NewMap(persistHistory),
		maxAttachment: maxAttachment,
		now:           time.Now,
	}
	s.RebuildDirectory()
	return s
}

// SetClock overrides the session clock; tests use this to pin time labels.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetUser switches the active user and rebuilds the directory so the new
// user is excluded from it. The open conversation is closed.
func (s *Session) SetUser(user models.User) {
	s.mu.Lock()
	s.user = user
	s.selection = models.Selection{}
	s.mu.Unlock()
	s.RebuildDirectory()
}

// RebuildDirectory re-derives the contact list from the record store. The
// rebuild is a pure function of the stored records plus the previous list,
// so repeated or out-of-order change notifications are safe. Unread counts
// survive by id; the rebuild never resets them.
func (s *Session) RebuildDirectory() {
	staff := store.LoadStaff()
	reception := store.LoadReception()
	s.mu.Lock()
	s.contacts = directory.Build(staff, reception, s.user.ID, s.contacts)
	s.mu.Unlock()
	metrics.DirectoryRebuilds.Inc()
	logger.Debug("directory_rebuilt", "contacts", len(staff)+len(reception))
}

// HandleEvent reacts to a store change notification. Record changes trigger
// a full directory rebuild; a conversation change for a contact other than
// the active one bumps that contact's unread count.
func (s *Session) HandleEvent(ev notify.Event) {
	if strings.HasPrefix(ev.Key, "conv:") {
		contactID := strings.TrimPrefix(ev.Key, "conv:")
		s.mu.Lock()
		active, _ := s.selection.ActiveContact()
		if ev.Remote && contactID != active {
			directory.IncrementUnread(s.contacts, contactID)
		}
		s.mu.Unlock()
		return
	}
	s.RebuildDirectory()
}

// Contacts returns the visible directory subset for the query and filter.
func (s *Session) Contacts(query, filter string) []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return directory.Visible(s.contacts, query, filter)
}

// Messages returns the conversation for a contact, oldest first.
func (s *Session) Messages(contactID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations.Load(contactID)
	out := make([]models.Message, len(s.conversations.List(contactID)))
	copy(out, s.conversations.List(contactID))
	return out
}

// --- selection state machine ---

// Select records a candidate contact. It never opens the conversation and
// never touches unread counts; that happens only on ConfirmSelection.
// Selecting the already-active contact is a no-op.
func (s *Session) Select(contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(contactID) < 0 {
		return fmt.Errorf("unknown contact: %s", contactID)
	}
	if active, ok := s.selection.ActiveContact(); ok && active == contactID {
		return nil
	}
	s.selection = models.Selection{State: models.SelectionPending, Candidate: contactID}
	return nil
}

// ConfirmSelection commits the pending candidate: the conversation opens,
// the contact's unread count is zeroed and the header menu closes. Outside
// Pending it is a no-op.
func (s *Session) ConfirmSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection.State != models.SelectionPending {
		return
	}
	id := s.selection.Candidate
	s.selection = models.Selection{State: models.SelectionActive, Selected: id}
	directory.ResetUnread(s.contacts, id)
	s.headerMenuOpen = false
	s.conversations.Load(id)
	logger.Info("conversation_opened", "contact", id)
}

// CancelSelection discards the pending candidate with no other change.
func (s *Session) CancelSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection.State != models.SelectionPending {
		return
	}
	s.selection = models.Selection{}
}

// Close leaves the active conversation.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = models.Selection{}
	s.cancelEditLocked()
}

// --- composer ---

// SetComposer replaces the composer text.
func (s *Session) SetComposer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer = text
}

// StageAttachment stores a selected file transiently until Send. Staging is
// rejected while an edit is in progress and when the file exceeds the
// configured cap.
func (s *Session) StageAttachment(a StagedAttachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editingID != "" {
		return fmt.Errorf("cannot attach while editing")
	}
	if s.maxAttachment > 0 && a.Size > s.maxAttachment {
		return fmt.Errorf("attachment too large: %d bytes", a.Size)
	}
	s.staged = &a
	return nil
}

// ClearAttachment removes the staged file.
func (s *Session) ClearAttachment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
}

// Send runs the composer pipeline. With an edit in progress it replaces the
// edited message's text in place, marks it edited and exits edit mode —
// no append, no reorder. Otherwise it requires an active contact and a
// non-empty trimmed text or a staged attachment; anything less is a silent
// no-op. A successful send appends an own message, clears the composer and
// staged attachment, closes the emoji panel and floats the target contact
// to the front of the directory.
func (s *Session) Send() {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := strings.TrimSpace(s.composer)

	if s.editingID != "" {
		active, ok := s.selection.ActiveContact()
		if !ok || text == "" {
			return
		}
		if s.conversations.Edit(active, s.editingID, text) {
			metrics.MessagesEdited.Inc()
			logger.Info("message_edited", "contact", active, "id", s.editingID)
		}
		s.editingID = ""
		s.composer = ""
		return
	}

	active, ok := s.selection.ActiveContact()
	if !ok {
		return
	}
	if text == "" && s.staged == nil {
		return
	}

	msg := models.Message{
		ID:        utils.GenMessageID(),
		Contact:   active,
		Sender:    s.user.ID,
		Text:      text,
		TS:        s.now().UTC().UnixNano(),
		TimeLabel: s.now().Format("15:04"),
		Own:       true,
	}
	if s.staged != nil {
		msg.Attachment = buildAttachment(*s.staged)
	}
	s.conversations.Append(active, msg)
	s.composer = ""
	s.staged = nil
	s.emojiOpen = false
	s.contacts = directory.MoveToFront(s.contacts, active)
	metrics.MessagesSent.Inc()
	logger.Info("message_sent", "contact", active, "id", msg.ID)
}

// buildAttachment derives the message attachment descriptor from a staged
// file: kind from the MIME prefix, size label in kilobytes with one
// decimal.
func buildAttachment(a StagedAttachment) *models.Attachment {
	kind := models.AttachmentFile
	if strings.HasPrefix(a.MIME, "image/") {
		kind = models.AttachmentImage
	}
	return &models.Attachment{
		Name:      a.Name,
		Kind:      kind,
		URL:       a.URL,
		SizeLabel: fmt.Sprintf("%.1f KB", float64(a.Size)/1024.0),
	}
}

// --- message menu actions ---

// StartEdit loads an own message's text into the composer and enters edit
// mode. Editing someone else's message is rejected. The message menu
// closes either way.
func (s *Session) StartEdit(msgID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuMessageID = ""
	active, ok := s.selection.ActiveContact()
	if !ok {
		return fmt.Errorf("no active conversation")
	}
	for _, m := range s.conversations.List(active) {
		if m.ID == msgID {
			if !m.Own {
				return fmt.Errorf("cannot edit another sender's message")
			}
			s.editingID = msgID
			s.composer = m.Text
			s.staged = nil
			return nil
		}
	}
	return fmt.Errorf("message not found: %s", msgID)
}

// CancelEdit clears edit mode and the composer without mutating any
// message.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelEditLocked()
}

func (s *Session) cancelEditLocked() {
	s.editingID = ""
	s.composer = ""
}

// RequestDeleteMessage stages a message deletion awaiting confirmation and
// closes the message menu.
func (s *Session) RequestDeleteMessage(msgID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuMessageID = ""
	s.pending = &PendingAction{Kind: ActionDeleteMessage, MessageID: msgID}
}

// RequestClearConversation stages emptying the active conversation and
// closes the header menu.
func (s *Session) RequestClearConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headerMenuOpen = false
	s.pending = &PendingAction{Kind: ActionClearConversation}
}

// ConfirmPending applies the staged destructive action.
func (s *Session) ConfirmPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return
	}
	action := *s.pending
	s.pending = nil
	active, ok := s.selection.ActiveContact()
	if !ok {
		return
	}
	switch action.Kind {
	case ActionDeleteMessage:
		if s.conversations.Delete(active, action.MessageID) {
			metrics.MessagesDeleted.Inc()
			logger.Info("message_deleted", "contact", active, "id", action.MessageID)
		}
		if s.editingID == action.MessageID {
			s.cancelEditLocked()
		}
	case ActionClearConversation:
		s.conversations.Clear(active)
		s.cancelEditLocked()
		metrics.ConversationsCleared.Inc()
		logger.Info("conversation_cleared", "contact", active)
	}
}

// CancelPending discards the staged action with no state change.
func (s *Session) CancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

func (s *Session) indexOf(id string) int {
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			return i
		}
	}
	return -1
}
