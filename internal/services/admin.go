package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"carvy-clinic/internal/database"
	"carvy-clinic/internal/models"
	"carvy-clinic/internal/utils"
)

// AdminService implements the administrator workflows: full CRUD over every
// collection plus dashboard stats and backups.
type AdminService struct {
	db *database.Database
}

// NewAdminService creates an AdminService over the given database.
func NewAdminService(db *database.Database) *AdminService {
	return &AdminService{db: db}
}

// DoctorRequest carries the add/edit doctor form.
type DoctorRequest struct {
	Name      string `validate:"required"`
	Email     string `validate:"required"`
	Specialty string `validate:"required"`
	License   string `validate:"required"`
}

func (s *AdminService) validateDoctor(req *DoctorRequest, excludeID int) error {
	req.Name = utils.Sanitize(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Specialty = utils.Sanitize(req.Specialty)
	req.License = utils.Sanitize(req.License)

	if err := utils.Validate(req); err != nil {
		return errors.New(utils.FormatValidationError(err))
	}
	if !utils.IsValidEmail(req.Email) {
		return errors.New("the email is not valid")
	}
	if doc, err := s.db.FindOne(database.CollectionDoctors, database.Document{"email": req.Email}); err == nil {
		if models.DoctorFromDocument(doc).ID != excludeID {
			return errors.New("this email is already registered")
		}
	}
	return nil
}

// CreateDoctor adds a doctor record.
func (s *AdminService) CreateDoctor(req DoctorRequest) (models.Doctor, error) {
	if err := s.validateDoctor(&req, 0); err != nil {
		return models.Doctor{}, err
	}
	id := s.db.Insert(database.CollectionDoctors, database.Document{
		"name":      req.Name,
		"email":     req.Email,
		"specialty": req.Specialty,
		"license":   req.License,
		"isActive":  true,
	})
	doc, err := s.db.FindByID(database.CollectionDoctors, id)
	if err != nil {
		return models.Doctor{}, err
	}
	return models.DoctorFromDocument(doc), nil
}

// UpdateDoctor edits an existing doctor record.
func (s *AdminService) UpdateDoctor(id int, req DoctorRequest) (models.Doctor, error) {
	if err := s.validateDoctor(&req, id); err != nil {
		return models.Doctor{}, err
	}
	doc, err := s.db.Update(database.CollectionDoctors, id, database.Document{
		"name":      req.Name,
		"email":     req.Email,
		"specialty": req.Specialty,
		"license":   req.License,
	})
	if err != nil {
		return models.Doctor{}, fmt.Errorf("doctor %d: %w", id, err)
	}
	return models.DoctorFromDocument(doc), nil
}

// DeleteDoctor removes a doctor together with their consultations and
// prescriptions, and deactivates the linked user account if there is one.
func (s *AdminService) DeleteDoctor(id int) error {
	if _, err := s.db.FindByID(database.CollectionDoctors, id); err != nil {
		return fmt.Errorf("doctor %d: %w", id, err)
	}
	for _, doc := range s.db.FindConsultationsByDoctor(id) {
		s.db.Delete(database.CollectionConsultations, models.ConsultationFromDocument(doc).ID)
	}
	for _, doc := range s.db.FindPrescriptionsByDoctor(id) {
		s.db.Delete(database.CollectionPrescriptions, models.PrescriptionFromDocument(doc).ID)
	}
	if userDoc, err := s.db.FindOne(database.CollectionUsers, database.Document{"doctorId": id}); err == nil {
		s.db.Update(database.CollectionUsers, models.UserFromDocument(userDoc).ID, database.Document{"isActive": false})
	}
	_, err := s.db.Delete(database.CollectionDoctors, id)
	return err
}

// ListDoctors returns every doctor in insertion order.
func (s *AdminService) ListDoctors() []models.Doctor {
	docs := s.db.GetAll(database.CollectionDoctors)
	doctors := make([]models.Doctor, 0, len(docs))
	for _, doc := range docs {
		doctors = append(doctors, models.DoctorFromDocument(doc))
	}
	return doctors
}

// PatientRequest carries the add/edit patient form.
type PatientRequest struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
	Phone string `validate:"required"`
	Age   int    `validate:"required,min=1,max=120"`
}

func (s *AdminService) validatePatient(req *PatientRequest, excludeID int) error {
	req.Name = utils.Sanitize(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = utils.Sanitize(req.Phone)

	if err := utils.Validate(req); err != nil {
		return errors.New(utils.FormatValidationError(err))
	}
	if !utils.IsValidEmail(req.Email) {
		return errors.New("the email is not valid")
	}
	if doc, err := s.db.FindOne(database.CollectionPatients, database.Document{"email": req.Email}); err == nil {
		if models.PatientFromDocument(doc).ID != excludeID {
			return errors.New("this email is already registered")
		}
	}
	return nil
}

// CreatePatient adds a patient record.
func (s *AdminService) CreatePatient(req PatientRequest) (models.Patient, error) {
	if err := s.validatePatient(&req, 0); err != nil {
		return models.Patient{}, err
	}
	id := s.db.Insert(database.CollectionPatients, database.Document{
		"name":     req.Name,
		"email":    req.Email,
		"phone":    req.Phone,
		"age":      req.Age,
		"isActive": true,
	})
	doc, err := s.db.FindByID(database.CollectionPatients, id)
	if err != nil {
		return models.Patient{}, err
	}
	return models.PatientFromDocument(doc), nil
}

// UpdatePatient edits an existing patient record.
func (s *AdminService) UpdatePatient(id int, req PatientRequest) (models.Patient, error) {
	if err := s.validatePatient(&req, id); err != nil {
		return models.Patient{}, err
	}
	doc, err := s.db.Update(database.CollectionPatients, id, database.Document{
		"name":  req.Name,
		"email": req.Email,
		"phone": req.Phone,
		"age":   req.Age,
	})
	if err != nil {
		return models.Patient{}, fmt.Errorf("patient %d: %w", id, err)
	}
	return models.PatientFromDocument(doc), nil
}

// DeletePatient removes a patient together with their consultations and
// prescriptions, and deactivates the linked user account if there is one.
func (s *AdminService) DeletePatient(id int) error {
	if _, err := s.db.FindByID(database.CollectionPatients, id); err != nil {
		return fmt.Errorf("patient %d: %w", id, err)
	}
	for _, doc := range s.db.FindConsultationsByPatient(id) {
		s.db.Delete(database.CollectionConsultations, models.ConsultationFromDocument(doc).ID)
	}
	for _, doc := range s.db.FindPrescriptionsByPatient(id) {
		s.db.Delete(database.CollectionPrescriptions, models.PrescriptionFromDocument(doc).ID)
	}
	if userDoc, err := s.db.FindOne(database.CollectionUsers, database.Document{"patientId": id}); err == nil {
		s.db.Update(database.CollectionUsers, models.UserFromDocument(userDoc).ID, database.Document{"isActive": false})
	}
	_, err := s.db.Delete(database.CollectionPatients, id)
	return err
}

// ListPatients returns every patient in insertion order.
func (s *AdminService) ListPatients() []models.Patient {
	docs := s.db.GetAll(database.CollectionPatients)
	patients := make([]models.Patient, 0, len(docs))
	for _, doc := range docs {
		patients = append(patients, models.PatientFromDocument(doc))
	}
	return patients
}

// ConsultationRequest carries the add/edit consultation form.
type ConsultationRequest struct {
	DoctorID  int       `validate:"required"`
	PatientID int       `validate:"required"`
	Date      time.Time `validate:"required"`
	Diagnosis string    `validate:"required"`
}

func (s *AdminService) validateConsultation(req *ConsultationRequest) error {
	req.Diagnosis = utils.Sanitize(req.Diagnosis)
	if err := utils.Validate(req); err != nil {
		return errors.New(utils.FormatValidationError(err))
	}
	if _, err := s.db.FindByID(database.CollectionDoctors, req.DoctorID); err != nil {
		return fmt.Errorf("doctor %d: %w", req.DoctorID, err)
	}
	if _, err := s.db.FindByID(database.CollectionPatients, req.PatientID); err != nil {
		return fmt.Errorf("patient %d: %w", req.PatientID, err)
	}
	return nil
}

// CreateConsultation adds a consultation, recorded as completed the way the
// admin dashboard files visits.
func (s *AdminService) CreateConsultation(req ConsultationRequest) (models.Consultation, error) {
	if err := s.validateConsultation(&req); err != nil {
		return models.Consultation{}, err
	}
	id := s.db.Insert(database.CollectionConsultations, database.Document{
		"doctorId":  req.DoctorID,
		"patientId": req.PatientID,
		"date":      req.Date,
		"diagnosis": req.Diagnosis,
		"status":    string(models.ConsultationCompleted),
	})
	doc, err := s.db.FindByID(database.CollectionConsultations, id)
	if err != nil {
		return models.Consultation{}, err
	}
	return models.ConsultationFromDocument(doc), nil
}

// UpdateConsultation edits an existing consultation, marking it completed.
func (s *AdminService) UpdateConsultation(id int, req ConsultationRequest) (models.Consultation, error) {
	if err := s.validateConsultation(&req); err != nil {
		return models.Consultation{}, err
	}
	doc, err := s.db.Update(database.CollectionConsultations, id, database.Document{
		"doctorId":  req.DoctorID,
		"patientId": req.PatientID,
		"date":      req.Date,
		"diagnosis": req.Diagnosis,
		"status":    string(models.ConsultationCompleted),
	})
	if err != nil {
		return models.Consultation{}, fmt.Errorf("consultation %d: %w", id, err)
	}
	return models.ConsultationFromDocument(doc), nil
}

// UpdateConsultationStatus moves a consultation through its lifecycle,
// rejecting transitions the state machine does not allow.
func (s *AdminService) UpdateConsultationStatus(id int, next models.ConsultationStatus) (models.Consultation, error) {
	if !next.Valid() {
		return models.Consultation{}, fmt.Errorf("unknown consultation status %q", next)
	}
	doc, err := s.db.FindByID(database.CollectionConsultations, id)
	if err != nil {
		return models.Consultation{}, fmt.Errorf("consultation %d: %w", id, err)
	}
	current := models.ConsultationFromDocument(doc).Status
	if !current.CanTransitionTo(next) {
		return models.Consultation{}, fmt.Errorf("cannot move a %s consultation to %s", current, next)
	}
	updated, err := s.db.Update(database.CollectionConsultations, id, database.Document{"status": string(next)})
	if err != nil {
		return models.Consultation{}, err
	}
	return models.ConsultationFromDocument(updated), nil
}

// DeleteConsultation removes a consultation, detaching any prescriptions that
// pointed at it.
func (s *AdminService) DeleteConsultation(id int) error {
	if _, err := s.db.FindByID(database.CollectionConsultations, id); err != nil {
		return fmt.Errorf("consultation %d: %w", id, err)
	}
	for _, doc := range s.db.FindPrescriptionsByConsultation(id) {
		s.db.Update(database.CollectionPrescriptions, models.PrescriptionFromDocument(doc).ID, database.Document{"consultationId": nil})
	}
	_, err := s.db.Delete(database.CollectionConsultations, id)
	return err
}

// ConsultationView is one row of the admin consultation table, with the
// referenced names resolved. Missing references render as empty names.
type ConsultationView struct {
	Consultation models.Consultation
	DoctorName   string
	PatientName  string
}

// ListConsultations returns every consultation with names resolved.
func (s *AdminService) ListConsultations() []ConsultationView {
	docs := s.db.GetAll(database.CollectionConsultations)
	views := make([]ConsultationView, 0, len(docs))
	for _, doc := range docs {
		c := models.ConsultationFromDocument(doc)
		views = append(views, ConsultationView{
			Consultation: c,
			DoctorName:   s.doctorName(c.DoctorID),
			PatientName:  s.patientName(c.PatientID),
		})
	}
	return views
}

// PrescriptionRequest carries the add/edit prescription form. The
// consultation link is optional.
type PrescriptionRequest struct {
	ConsultationID int
	DoctorID       int       `validate:"required"`
	PatientID      int       `validate:"required"`
	Date           time.Time `validate:"required"`
	Medication     string    `validate:"required"`
	Instructions   string    `validate:"required"`
}

func (s *AdminService) validatePrescription(req *PrescriptionRequest) error {
	req.Medication = utils.Sanitize(req.Medication)
	req.Instructions = utils.Sanitize(req.Instructions)
	if err := utils.Validate(req); err != nil {
		return errors.New(utils.FormatValidationError(err))
	}
	if _, err := s.db.FindByID(database.CollectionDoctors, req.DoctorID); err != nil {
		return fmt.Errorf("doctor %d: %w", req.DoctorID, err)
	}
	if _, err := s.db.FindByID(database.CollectionPatients, req.PatientID); err != nil {
		return fmt.Errorf("patient %d: %w", req.PatientID, err)
	}
	if req.ConsultationID != 0 {
		if _, err := s.db.FindByID(database.CollectionConsultations, req.ConsultationID); err != nil {
			return fmt.Errorf("consultation %d: %w", req.ConsultationID, err)
		}
	}
	return nil
}

// CreatePrescription adds a prescription in the active state.
func (s *AdminService) CreatePrescription(req PrescriptionRequest) (models.Prescription, error) {
	if err := s.validatePrescription(&req); err != nil {
		return models.Prescription{}, err
	}
	fields := database.Document{
		"doctorId":     req.DoctorID,
		"patientId":    req.PatientID,
		"date":         req.Date,
		"medication":   req.Medication,
		"instructions": req.Instructions,
		"status":       string(models.PrescriptionActive),
	}
	if req.ConsultationID != 0 {
		fields["consultationId"] = req.ConsultationID
	}
	id := s.db.Insert(database.CollectionPrescriptions, fields)
	doc, err := s.db.FindByID(database.CollectionPrescriptions, id)
	if err != nil {
		return models.Prescription{}, err
	}
	return models.PrescriptionFromDocument(doc), nil
}

// UpdatePrescription edits an existing prescription, resetting it to active.
func (s *AdminService) UpdatePrescription(id int, req PrescriptionRequest) (models.Prescription, error) {
	if err := s.validatePrescription(&req); err != nil {
		return models.Prescription{}, err
	}
	doc, err := s.db.Update(database.CollectionPrescriptions, id, database.Document{
		"doctorId":     req.DoctorID,
		"patientId":    req.PatientID,
		"date":         req.Date,
		"medication":   req.Medication,
		"instructions": req.Instructions,
		"status":       string(models.PrescriptionActive),
	})
	if err != nil {
		return models.Prescription{}, fmt.Errorf("prescription %d: %w", id, err)
	}
	return models.PrescriptionFromDocument(doc), nil
}

// UpdatePrescriptionStatus moves a prescription through its lifecycle,
// rejecting transitions the state machine does not allow.
func (s *AdminService) UpdatePrescriptionStatus(id int, next models.PrescriptionStatus) (models.Prescription, error) {
	if !next.Valid() {
		return models.Prescription{}, fmt.Errorf("unknown prescription status %q", next)
	}
	doc, err := s.db.FindByID(database.CollectionPrescriptions, id)
	if err != nil {
		return models.Prescription{}, fmt.Errorf("prescription %d: %w", id, err)
	}
	current := models.PrescriptionFromDocument(doc).Status
	if !current.CanTransitionTo(next) {
		return models.Prescription{}, fmt.Errorf("cannot move a %s prescription to %s", current, next)
	}
	updated, err := s.db.Update(database.CollectionPrescriptions, id, database.Document{"status": string(next)})
	if err != nil {
		return models.Prescription{}, err
	}
	return models.PrescriptionFromDocument(updated), nil
}

// DeletePrescription removes a prescription.
func (s *AdminService) DeletePrescription(id int) error {
	_, err := s.db.Delete(database.CollectionPrescriptions, id)
	if err != nil {
		return fmt.Errorf("prescription %d: %w", id, err)
	}
	return nil
}

// PrescriptionView is one row of the admin prescription table.
type PrescriptionView struct {
	Prescription models.Prescription
	DoctorName   string
	PatientName  string
}

// ListPrescriptions returns every prescription with names resolved.
func (s *AdminService) ListPrescriptions() []PrescriptionView {
	docs := s.db.GetAll(database.CollectionPrescriptions)
	views := make([]PrescriptionView, 0, len(docs))
	for _, doc := range docs {
		p := models.PrescriptionFromDocument(doc)
		views = append(views, PrescriptionView{
			Prescription: p,
			DoctorName:   s.doctorName(p.DoctorID),
			PatientName:  s.patientName(p.PatientID),
		})
	}
	return views
}

// Stats returns the dashboard counters.
func (s *AdminService) Stats() database.Stats {
	return s.db.Stats()
}

// ExportBackup serializes the full database for download.
func (s *AdminService) ExportBackup() ([]byte, error) {
	return s.db.ExportJSON()
}

// ImportBackup restores a previously exported backup.
func (s *AdminService) ImportBackup(data []byte) error {
	return s.db.ImportJSON(data)
}

func (s *AdminService) doctorName(id int) string {
	if doc, err := s.db.FindByID(database.CollectionDoctors, id); err == nil {
		return models.DoctorFromDocument(doc).Name
	}
	return ""
}

func (s *AdminService) patientName(id int) string {
	if doc, err := s.db.FindByID(database.CollectionPatients, id); err == nil {
		return models.PatientFromDocument(doc).Name
	}
	return ""
}
