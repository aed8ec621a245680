package directory

import (
	"net/url"

	"clinichat/pkg/models"
)

// Placeholder avatar colors, fixed per category.
const (
	staffAvatarColor     = "0ea5e9"
	receptionAvatarColor = "8b5cf6"
)

// Build merges the two external record collections into the unified contact
// list. The current user is excluded, duplicate ids are dropped (first
// occurrence wins, staff before reception), presence is derived per
// category, and unread counts are carried forward from prev by id — a
// rebuild never resets them. Inputs are not mutated.
func Build(staff []models.StaffRecord, reception []models.ReceptionRecord, currentUserID string, prev []models.Contact) []models.Contact {
	prevUnread := make(map[string]int, len(prev))
	for _, c := range prev {
		prevUnread[c.ID] = c.Unread
	}

	seen := make(map[string]struct{}, len(staff)+len(reception))
	out := make([]models.Contact, 0, len(staff)+len(reception))

	add := func(c models.Contact) {
		if c.ID == "" || c.ID == currentUserID {
			return
		}
		if _, dup := seen[c.ID]; dup {
			return
		}
		seen[c.ID] = struct{}{}
		c.Unread = prevUnread[c.ID]
		out = append(out, c)
	}

	for _, r := range staff {
		presence := models.PresenceOffline
		if r.Status == "active" {
			presence = models.PresenceOnline
		}
		add(models.Contact{
			ID:        r.ID,
			Name:      r.Name,
			Role:      r.Specialty,
			AvatarURL: avatarOr(r.Avatar, r.Name, staffAvatarColor),
			Presence:  presence,
			Category:  models.CategoryStaff,
		})
	}
	for _, r := range reception {
		presence := r.Status
		if presence != models.PresenceOnline {
			presence = models.PresenceOffline
		}
		add(models.Contact{
			ID:        r.ID,
			Name:      r.Name,
			Role:      r.Sector,
			AvatarURL: avatarOr(r.Avatar, r.Name, receptionAvatarColor),
			Presence:  presence,
			Category:  models.CategoryReception,
		})
	}
	return out
}

// avatarOr returns the record's avatar or a generated placeholder keyed by
// name with the category color.
func avatarOr(avatar, name, color string) string {
	if avatar != "" {
		return avatar
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=" + color + "&color=fff"
}

// MoveToFront returns the list with the contact at index 0 and the relative
// order of every other contact preserved. Unknown ids leave the list as is.
func MoveToFront(list []models.Contact, id string) []models.Contact {
	idx := indexOf(list, id)
	if idx <= 0 {
		return list
	}
	out := make([]models.Contact, 0, len(list))
	out = append(out, list[idx])
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return out
}

// ResetUnread zeroes the contact's unread count in place.
func ResetUnread(list []models.Contact, id string) {
	if i := indexOf(list, id); i >= 0 {
		list[i].Unread = 0
	}
}

// IncrementUnread bumps the contact's unread count in place.
func IncrementUnread(list []models.Contact, id string) {
	if i := indexOf(list, id); i >= 0 {
		list[i].Unread++
	}
}

func indexOf(list []models.Contact, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
