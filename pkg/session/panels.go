package session

// Panel regions reported by the client on a global pointer-down. Each open
// panel closes when the interaction target falls outside its trigger and
// dropdown region.
const (
	RegionEmoji      = "emoji"
	RegionMessage    = "message_menu"
	RegionHeaderMenu = "header_menu"
)

// ToggleEmoji flips the emoji panel.
func (s *Session) ToggleEmoji() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emojiOpen = !s.emojiOpen
}

// ToggleMessageMenu opens the per-message menu for the given message, or
// closes it when already open for that message.
func (s *Session) ToggleMessageMenu(msgID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.menuMessageID == msgID {
		s.menuMessageID = ""
		return
	}
	s.menuMessageID = msgID
}

// ToggleHeaderMenu flips the conversation header options menu.
func (s *Session) ToggleHeaderMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headerMenuOpen = !s.headerMenuOpen
}

// PointerDown handles the single global pointer listener: every panel whose
// region is not among the hit regions closes. Panels only ever open through
// their own toggle.
func (s *Session) PointerDown(hitRegions []string) {
	hits := map[string]struct{}{}
	for _, r := range hitRegions {
		hits[r] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := hits[RegionEmoji]; !ok {
		s.emojiOpen = false
	}
	if _, ok := hits[RegionMessage]; !ok {
		s.menuMessageID = ""
	}
	if _, ok := hits[RegionHeaderMenu]; !ok {
		s.headerMenuOpen = false
	}
}
