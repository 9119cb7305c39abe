package services

import (
	"sort"
	"time"

	"carvy-clinic/internal/database"
	"carvy-clinic/internal/models"
)

// DoctorService implements the doctor dashboard reads. Every method is scoped
// to one doctor id, resolved from the session by the caller.
type DoctorService struct {
	db *database.Database
}

// NewDoctorService creates a DoctorService over the given database.
func NewDoctorService(db *database.Database) *DoctorService {
	return &DoctorService{db: db}
}

// PatientSummary is one row of the doctor's patient list. LastVisit is zero
// when the patient has no dated consultation with this doctor.
type PatientSummary struct {
	Patient   models.Patient
	LastVisit time.Time
}

// Patients returns the distinct patients seen across the doctor's
// consultations, each with the date of their most recent visit.
func (s *DoctorService) Patients(doctorID int) []PatientSummary {
	docs := s.db.FindPatientsByDoctor(doctorID)
	summaries := make([]PatientSummary, 0, len(docs))
	for _, doc := range docs {
		patient := models.PatientFromDocument(doc)
		summary := PatientSummary{Patient: patient}
		for _, c := range s.db.Find(database.CollectionConsultations, database.Document{
			"doctorId":  doctorID,
			"patientId": patient.ID,
		}) {
			if date := models.ConsultationFromDocument(c).Date; date.After(summary.LastVisit) {
				summary.LastVisit = date
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Consultations returns the doctor's consultations, most recent first.
func (s *DoctorService) Consultations(doctorID int) []models.Consultation {
	docs := s.db.FindConsultationsByDoctor(doctorID)
	consultations := make([]models.Consultation, 0, len(docs))
	for _, doc := range docs {
		consultations = append(consultations, models.ConsultationFromDocument(doc))
	}
	sort.SliceStable(consultations, func(i, j int) bool {
		return consultations[i].Date.After(consultations[j].Date)
	})
	return consultations
}

// Prescriptions returns the doctor's prescriptions, most recent first.
func (s *DoctorService) Prescriptions(doctorID int) []models.Prescription {
	docs := s.db.FindPrescriptionsByDoctor(doctorID)
	prescriptions := make([]models.Prescription, 0, len(docs))
	for _, doc := range docs {
		prescriptions = append(prescriptions, models.PrescriptionFromDocument(doc))
	}
	sort.SliceStable(prescriptions, func(i, j int) bool {
		return prescriptions[i].Date.After(prescriptions[j].Date)
	})
	return prescriptions
}
