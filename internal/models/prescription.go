package models

import "time"

// PrescriptionStatus tracks a prescription through its lifecycle.
type PrescriptionStatus string

const (
	PrescriptionActive    PrescriptionStatus = "active"
	PrescriptionDispensed PrescriptionStatus = "dispensed"
	PrescriptionExpired   PrescriptionStatus = "expired"
)

// Dispensed and expired are terminal.
var prescriptionTransitions = map[PrescriptionStatus][]PrescriptionStatus{
	PrescriptionActive: {PrescriptionDispensed, PrescriptionExpired},
}

// Valid reports whether the status is one of the known values.
func (s PrescriptionStatus) Valid() bool {
	switch s {
	case PrescriptionActive, PrescriptionDispensed, PrescriptionExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to next is a legal status change.
func (s PrescriptionStatus) CanTransitionTo(next PrescriptionStatus) bool {
	for _, allowed := range prescriptionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Prescription is one medication order in the prescriptions collection. The
// consultation link is optional; admin-created prescriptions may stand alone.
type Prescription struct {
	ID             int
	ConsultationID int // 0 when not linked to a consultation
	DoctorID       int
	PatientID      int
	Medication     string
	Instructions   string
	Date           time.Time
	Status         PrescriptionStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PrescriptionFromDocument builds a typed prescription from a store document.
func PrescriptionFromDocument(doc map[string]any) Prescription {
	return Prescription{
		ID:             docInt(doc, "id"),
		ConsultationID: docInt(doc, "consultationId"),
		DoctorID:       docInt(doc, "doctorId"),
		PatientID:      docInt(doc, "patientId"),
		Medication:     docString(doc, "medication"),
		Instructions:   docString(doc, "instructions"),
		Date:           docTime(doc, "date"),
		Status:         PrescriptionStatus(docString(doc, "status")),
		CreatedAt:      docTime(doc, "createdAt"),
		UpdatedAt:      docTime(doc, "updatedAt"),
	}
}
