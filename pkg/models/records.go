package models

// StaffRecord is the external medical-staff record shape. Status "active"
// maps to an online presence in the directory; anything else is offline.
type StaffRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Status    string `json:"status,omitempty"`
}

// ReceptionRecord is the external reception-staff record shape. Status is a
// presence value and passes through to the directory unchanged.
type ReceptionRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Sector string `json:"sector,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Status string `json:"status,omitempty"`
}
