package seed

import "clinichat/pkg/models"

// Staff returns the built-in medical staff records used when the record
// store has no stored value (or the stored value cannot be parsed).
func Staff() []models.StaffRecord {
	return []models.StaffRecord{
		{ID: "dr-1", Name: "Dr. Helena Souza", Specialty: "Cardiology", Status: "active"},
		{ID: "dr-2", Name: "Dr. Marcos Lima", Specialty: "Orthopedics", Status: "active"},
		{ID: "dr-3", Name: "Dr. Ana Castro", Specialty: "Dermatology", Status: "inactive"},
		{ID: "dr-4", Name: "Dr. Paulo Mendes", Specialty: "Pediatrics", Status: "active"},
	}
}

// Reception returns the built-in reception staff records.
func Reception() []models.ReceptionRecord {
	return []models.ReceptionRecord{
		{ID: "rc-1", Name: "Carla Nunes", Sector: "Front Desk", Status: "online"},
		{ID: "rc-2", Name: "Roberto Dias", Sector: "Scheduling", Status: "offline"},
		{ID: "rc-3", Name: "Fernanda Alves", Sector: "Billing", Status: "online"},
	}
}
