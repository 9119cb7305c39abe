package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carvy-clinic/internal/database"
	"carvy-clinic/internal/models"
	"carvy-clinic/internal/services"
	"carvy-clinic/internal/storage"
)

// newClinic builds a database with one doctor, one patient, one completed
// consultation between them and one active prescription, all with id 1.
func newClinic(t *testing.T) *database.Database {
	t.Helper()
	db := database.New(storage.NewMemoryStorage(0))
	db.Insert(database.CollectionDoctors, database.Document{
		"name": "Dr. A", "email": "dra@x.com", "specialty": "Cardio", "license": "L1", "isActive": true,
	})
	db.Insert(database.CollectionPatients, database.Document{
		"name": "María", "email": "maria@x.com", "phone": "555-1234", "age": 35, "isActive": true,
	})
	db.Insert(database.CollectionConsultations, database.Document{
		"doctorId": 1, "patientId": 1,
		"date":   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		"status": string(models.ConsultationCompleted), "diagnosis": "Control",
	})
	db.Insert(database.CollectionPrescriptions, database.Document{
		"consultationId": 1, "doctorId": 1, "patientId": 1,
		"date":       time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		"medication": "Paracetamol 500mg", "instructions": "Cada 8 horas",
		"status": string(models.PrescriptionActive),
	})
	return db
}

func TestCreateDoctorValidation(t *testing.T) {
	db := newClinic(t)
	s := services.NewAdminService(db)

	_, err := s.CreateDoctor(services.DoctorRequest{Name: "Dr. B", Email: "drb@x.com", Specialty: "Neuro"})
	assert.Error(t, err, "the license is required")

	_, err = s.CreateDoctor(services.DoctorRequest{Name: "Dr. B", Email: "not-an-email", Specialty: "Neuro", License: "L2"})
	assert.Error(t, err)

	_, err = s.CreateDoctor(services.DoctorRequest{Name: "Dr. B", Email: "DRA@x.com", Specialty: "Neuro", License: "L2"})
	assert.Error(t, err, "doctor emails are unique case-insensitively")

	doctor, err := s.CreateDoctor(services.DoctorRequest{Name: " Dr. B ", Email: "drb@x.com", Specialty: "Neuro", License: "L2"})
	require.NoError(t, err)
	assert.Equal(t, 2, doctor.ID)
	assert.Equal(t, "Dr. B", doctor.Name, "input is trimmed")
	assert.True(t, doctor.IsActive)
}

func TestUpdateDoctorKeepsOwnEmail(t *testing.T) {
	s := services.NewAdminService(newClinic(t))

	doctor, err := s.UpdateDoctor(1, services.DoctorRequest{Name: "Dr. A", Email: "dra@x.com", Specialty: "Neuro", License: "L1"})
	require.NoError(t, err)
	assert.Equal(t, "Neuro", doctor.Specialty)

	_, err = s.UpdateDoctor(99, services.DoctorRequest{Name: "X", Email: "x@x.com", Specialty: "S", License: "L"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCreatePatientValidation(t *testing.T) {
	s := services.NewAdminService(newClinic(t))

	_, err := s.CreatePatient(services.PatientRequest{Name: "P", Email: "p@x.com", Phone: "555", Age: 0})
	assert.Error(t, err, "age must be at least 1")

	_, err = s.CreatePatient(services.PatientRequest{Name: "P", Email: "p@x.com", Phone: "555", Age: 130})
	assert.Error(t, err, "age must be at most 120")

	patient, err := s.CreatePatient(services.PatientRequest{Name: "P", Email: "p@x.com", Phone: "555", Age: 40})
	require.NoError(t, err)
	assert.Equal(t, 2, patient.ID)
	assert.Equal(t, 40, patient.Age)
}

func TestDeleteDoctorCascades(t *testing.T) {
	db := newClinic(t)
	// A doctor account linked to doctor 1.
	db.Insert(database.CollectionUsers, database.Document{
		"email": "dra@x.com", "role": "doctor", "doctorId": 1, "isActive": true,
	})
	s := services.NewAdminService(db)

	require.NoError(t, s.DeleteDoctor(1))

	assert.Empty(t, db.GetAll(database.CollectionDoctors))
	assert.Empty(t, db.GetAll(database.CollectionConsultations), "the doctor's consultations go with them")
	assert.Empty(t, db.GetAll(database.CollectionPrescriptions), "the doctor's prescriptions go with them")

	userDoc, err := db.FindByID(database.CollectionUsers, 1)
	require.NoError(t, err)
	assert.Equal(t, false, userDoc["isActive"], "the linked account is deactivated, not deleted")

	assert.ErrorIs(t, s.DeleteDoctor(1), database.ErrNotFound)
}

func TestDeletePatientCascades(t *testing.T) {
	db := newClinic(t)
	s := services.NewAdminService(db)

	require.NoError(t, s.DeletePatient(1))
	assert.Empty(t, db.GetAll(database.CollectionPatients))
	assert.Empty(t, db.GetAll(database.CollectionConsultations))
	assert.Empty(t, db.GetAll(database.CollectionPrescriptions))
}

func TestDeleteConsultationDetachesPrescriptions(t *testing.T) {
	db := newClinic(t)
	s := services.NewAdminService(db)

	require.NoError(t, s.DeleteConsultation(1))

	assert.Empty(t, db.GetAll(database.CollectionConsultations))
	doc, err := db.FindByID(database.CollectionPrescriptions, 1)
	require.NoError(t, err, "the prescription survives the consultation")
	assert.Zero(t, models.PrescriptionFromDocument(doc).ConsultationID)
}

func TestCreateConsultationRequiresExistingParties(t *testing.T) {
	s := services.NewAdminService(newClinic(t))

	_, err := s.CreateConsultation(services.ConsultationRequest{
		DoctorID: 9, PatientID: 1, Date: time.Now(), Diagnosis: "X",
	})
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = s.CreateConsultation(services.ConsultationRequest{
		DoctorID: 1, PatientID: 9, Date: time.Now(), Diagnosis: "X",
	})
	assert.ErrorIs(t, err, database.ErrNotFound)

	// Admin-filed consultations are recorded as completed visits.
	c, err := s.CreateConsultation(services.ConsultationRequest{
		DoctorID: 1, PatientID: 1, Date: time.Now(), Diagnosis: "Control anual",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationCompleted, c.Status)
}

func TestConsultationStatusEnforcement(t *testing.T) {
	db := newClinic(t)
	db.Insert(database.CollectionConsultations, database.Document{
		"doctorId": 1, "patientId": 1, "date": time.Now(),
		"status": string(models.ConsultationPending), "diagnosis": "Motivo: control",
	})
	s := services.NewAdminService(db)

	c, err := s.UpdateConsultationStatus(2, models.ConsultationCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationCompleted, c.Status)

	_, err = s.UpdateConsultationStatus(2, models.ConsultationCancelled)
	assert.Error(t, err, "completed is terminal")

	_, err = s.UpdateConsultationStatus(2, "archived")
	assert.Error(t, err, "unknown statuses are rejected before lookup")

	_, err = s.UpdateConsultationStatus(99, models.ConsultationCompleted)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestPrescriptionStatusEnforcement(t *testing.T) {
	s := services.NewAdminService(newClinic(t))

	p, err := s.UpdatePrescriptionStatus(1, models.PrescriptionDispensed)
	require.NoError(t, err)
	assert.Equal(t, models.PrescriptionDispensed, p.Status)

	_, err = s.UpdatePrescriptionStatus(1, models.PrescriptionExpired)
	assert.Error(t, err, "dispensed is terminal")
}

func TestCreatePrescriptionOptionalConsultation(t *testing.T) {
	s := services.NewAdminService(newClinic(t))

	p, err := s.CreatePrescription(services.PrescriptionRequest{
		DoctorID: 1, PatientID: 1, Date: time.Now(),
		Medication: "Ibuprofeno 400mg", Instructions: "Cada 12 horas",
	})
	require.NoError(t, err)
	assert.Zero(t, p.ConsultationID)
	assert.Equal(t, models.PrescriptionActive, p.Status)

	_, err = s.CreatePrescription(services.PrescriptionRequest{
		ConsultationID: 99, DoctorID: 1, PatientID: 1, Date: time.Now(),
		Medication: "X", Instructions: "Y",
	})
	assert.ErrorIs(t, err, database.ErrNotFound, "a given consultation link must resolve")
}

func TestListViewsResolveNames(t *testing.T) {
	db := newClinic(t)
	db.Insert(database.CollectionConsultations, database.Document{
		"doctorId": 9, "patientId": 1, "date": time.Now(), "status": "completed",
	})
	s := services.NewAdminService(db)

	consultations := s.ListConsultations()
	require.Len(t, consultations, 2)
	assert.Equal(t, "Dr. A", consultations[0].DoctorName)
	assert.Equal(t, "María", consultations[0].PatientName)
	assert.Empty(t, consultations[1].DoctorName, "dangling references render as empty names")

	prescriptions := s.ListPrescriptions()
	require.Len(t, prescriptions, 1)
	assert.Equal(t, "Dr. A", prescriptions[0].DoctorName)
}

func TestAdminBackupRoundTrip(t *testing.T) {
	db := newClinic(t)
	s := services.NewAdminService(db)

	data, err := s.ExportBackup()
	require.NoError(t, err)

	fresh := database.New(storage.NewMemoryStorage(0))
	restored := services.NewAdminService(fresh)
	require.NoError(t, restored.ImportBackup(data))
	assert.Equal(t, s.Stats().TotalConsultations, restored.Stats().TotalConsultations)
	assert.Len(t, restored.ListDoctors(), 1)
}
