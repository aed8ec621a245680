package models

// SelectionState tags the conversation-entry state machine. Entering a
// conversation is a two-step commitment: picking a contact in the list only
// records a candidate; a separate confirmation opens the conversation.
type SelectionState int

const (
	SelectionIdle SelectionState = iota
	SelectionPending
	SelectionActive
)

// Selection is the tagged selection state. Candidate is set only in
// Pending, Selected only in Active; the zero value is Idle.
type Selection struct {
	State     SelectionState
	Candidate string
	Selected  string
}

// ActiveContact returns the selected contact id and whether a conversation
// is currently open.
func (s Selection) ActiveContact() (string, bool) {
	if s.State == SelectionActive && s.Selected != "" {
		return s.Selected, true
	}
	return "", false
}

func (s SelectionState) String() string {
	switch s {
	case SelectionPending:
		return "pending"
	case SelectionActive:
		return "active"
	default:
		return "idle"
	}
}
