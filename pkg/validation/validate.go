package validation

import (
	"errors"
	"fmt"
	"strings"

	"clinichat/pkg/models"
)

var receptionStatuses = map[string]struct{}{
	"":                     {},
	models.PresenceOnline:  {},
	models.PresenceOffline: {},
}

// ValidateStaffRecords checks a staff collection before it is stored:
// every record needs a non-empty id and name, and ids must be unique.
func ValidateStaffRecords(recs []models.StaffRecord) error {
	var errs []string
	seen := map[string]struct{}{}
	for i, r := range recs {
		if strings.TrimSpace(r.ID) == "" {
			errs = append(errs, fmt.Sprintf("record %d: id is required", i))
			continue
		}
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, fmt.Sprintf("record %s: name is required", r.ID))
		}
		if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate id: %s", r.ID))
		}
		seen[r.ID] = struct{}{}
	}
	return join(errs)
}

// ValidateReceptionRecords checks a reception collection: non-empty unique
// ids and names, and a status that is a presence value when present.
func ValidateReceptionRecords(recs []models.ReceptionRecord) error {
	var errs []string
	seen := map[string]struct{}{}
	for i, r := range recs {
		if strings.TrimSpace(r.ID) == "" {
			errs = append(errs, fmt.Sprintf("record %d: id is required", i))
			continue
		}
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, fmt.Sprintf("record %s: name is required", r.ID))
		}
		if _, ok := receptionStatuses[r.Status]; !ok {
			errs = append(errs, fmt.Sprintf("record %s: invalid status %q", r.ID, r.Status))
		}
		if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate id: %s", r.ID))
		}
		seen[r.ID] = struct{}{}
	}
	return join(errs)
}

func join(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(errs, "; "))
}
