package models

import "time"

// ConsultationStatus tracks a consultation through its lifecycle.
type ConsultationStatus string

const (
	ConsultationPending   ConsultationStatus = "pending"
	ConsultationCompleted ConsultationStatus = "completed"
	ConsultationCancelled ConsultationStatus = "cancelled"
)

// Completed and cancelled are terminal.
var consultationTransitions = map[ConsultationStatus][]ConsultationStatus{
	ConsultationPending: {ConsultationCompleted, ConsultationCancelled},
}

// Valid reports whether the status is one of the known values.
func (s ConsultationStatus) Valid() bool {
	switch s {
	case ConsultationPending, ConsultationCompleted, ConsultationCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to next is a legal status change.
func (s ConsultationStatus) CanTransitionTo(next ConsultationStatus) bool {
	for _, allowed := range consultationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Consultation is one visit (or scheduled visit) in the consultations
// collection. Patient self-scheduled appointments start as pending.
type Consultation struct {
	ID        int
	DoctorID  int
	PatientID int
	Date      time.Time
	Diagnosis string
	Status    ConsultationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConsultationFromDocument builds a typed consultation from a store document.
func ConsultationFromDocument(doc map[string]any) Consultation {
	return Consultation{
		ID:        docInt(doc, "id"),
		DoctorID:  docInt(doc, "doctorId"),
		PatientID: docInt(doc, "patientId"),
		Date:      docTime(doc, "date"),
		Diagnosis: docString(doc, "diagnosis"),
		Status:    ConsultationStatus(docString(doc, "status")),
		CreatedAt: docTime(doc, "createdAt"),
		UpdatedAt: docTime(doc, "updatedAt"),
	}
}
