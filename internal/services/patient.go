package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"carvy-clinic/internal/database"
	"carvy-clinic/internal/models"
	"carvy-clinic/internal/utils"
)

// PatientService implements the patient dashboard: upcoming appointments,
// self-scheduling, history, prescriptions and the profile view.
type PatientService struct {
	db *database.Database
}

// NewPatientService creates a PatientService over the given database.
func NewPatientService(db *database.Database) *PatientService {
	return &PatientService{db: db}
}

// AppointmentView is one row of a patient-facing consultation table, with the
// doctor resolved.
type AppointmentView struct {
	Consultation    models.Consultation
	DoctorName      string
	DoctorSpecialty string
}

// UpcomingAppointments returns consultations that are in the future or still
// pending, soonest first.
func (s *PatientService) UpcomingAppointments(patientID int) []AppointmentView {
	now := time.Now()
	var views []AppointmentView
	for _, doc := range s.db.FindConsultationsByPatient(patientID) {
		c := models.ConsultationFromDocument(doc)
		if c.Date.Before(now) && c.Status != models.ConsultationPending {
			continue
		}
		views = append(views, s.view(c))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Consultation.Date.Before(views[j].Consultation.Date)
	})
	return views
}

// ScheduleRequest carries the self-scheduling form.
type ScheduleRequest struct {
	DoctorID int       `validate:"required"`
	Date     time.Time `validate:"required"`
	Reason   string    `validate:"required"`
}

// Schedule books a pending consultation with a doctor at a future date.
func (s *PatientService) Schedule(patientID int, req ScheduleRequest) (models.Consultation, error) {
	req.Reason = utils.Sanitize(req.Reason)
	if err := utils.Validate(req); err != nil {
		return models.Consultation{}, errors.New(utils.FormatValidationError(err))
	}
	if _, err := s.db.FindByID(database.CollectionDoctors, req.DoctorID); err != nil {
		return models.Consultation{}, fmt.Errorf("doctor %d: %w", req.DoctorID, err)
	}
	if !req.Date.After(time.Now()) {
		return models.Consultation{}, errors.New("the date must be in the future")
	}

	id := s.db.Insert(database.CollectionConsultations, database.Document{
		"doctorId":  req.DoctorID,
		"patientId": patientID,
		"date":      req.Date,
		"diagnosis": "Motivo: " + req.Reason,
		"status":    string(models.ConsultationPending),
	})
	doc, err := s.db.FindByID(database.CollectionConsultations, id)
	if err != nil {
		return models.Consultation{}, err
	}
	return models.ConsultationFromDocument(doc), nil
}

// CancelAppointment moves one of the patient's pending consultations to
// cancelled.
func (s *PatientService) CancelAppointment(patientID, consultationID int) (models.Consultation, error) {
	doc, err := s.db.FindByID(database.CollectionConsultations, consultationID)
	if err != nil {
		return models.Consultation{}, fmt.Errorf("consultation %d: %w", consultationID, err)
	}
	c := models.ConsultationFromDocument(doc)
	if c.PatientID != patientID {
		return models.Consultation{}, errors.New("this appointment belongs to another patient")
	}
	if !c.Status.CanTransitionTo(models.ConsultationCancelled) {
		return models.Consultation{}, fmt.Errorf("cannot cancel a %s consultation", c.Status)
	}
	updated, err := s.db.Update(database.CollectionConsultations, consultationID, database.Document{
		"status": string(models.ConsultationCancelled),
	})
	if err != nil {
		return models.Consultation{}, err
	}
	return models.ConsultationFromDocument(updated), nil
}

// History returns the patient's completed consultations, most recent first.
func (s *PatientService) History(patientID int) []AppointmentView {
	var views []AppointmentView
	for _, doc := range s.db.FindConsultationsByPatient(patientID) {
		c := models.ConsultationFromDocument(doc)
		if c.Status != models.ConsultationCompleted {
			continue
		}
		views = append(views, s.view(c))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Consultation.Date.After(views[j].Consultation.Date)
	})
	return views
}

// Prescriptions returns the patient's prescriptions, most recent first.
func (s *PatientService) Prescriptions(patientID int) []models.Prescription {
	docs := s.db.FindPrescriptionsByPatient(patientID)
	prescriptions := make([]models.Prescription, 0, len(docs))
	for _, doc := range docs {
		prescriptions = append(prescriptions, models.PrescriptionFromDocument(doc))
	}
	sort.SliceStable(prescriptions, func(i, j int) bool {
		return prescriptions[i].Date.After(prescriptions[j].Date)
	})
	return prescriptions
}

// Profile returns the patient's own record.
func (s *PatientService) Profile(patientID int) (models.Patient, error) {
	doc, err := s.db.FindByID(database.CollectionPatients, patientID)
	if err != nil {
		return models.Patient{}, fmt.Errorf("patient %d: %w", patientID, err)
	}
	return models.PatientFromDocument(doc), nil
}

func (s *PatientService) view(c models.Consultation) AppointmentView {
	view := AppointmentView{Consultation: c}
	if doc, err := s.db.FindByID(database.CollectionDoctors, c.DoctorID); err == nil {
		doctor := models.DoctorFromDocument(doc)
		view.DoctorName = doctor.Name
		view.DoctorSpecialty = doctor.Specialty
	}
	return view
}
