package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carvy-clinic/internal/database"
	"carvy-clinic/internal/models"
	"carvy-clinic/internal/services"
)

func TestDoctorPatients(t *testing.T) {
	db := newClinic(t)
	db.Insert(database.CollectionPatients, database.Document{"name": "Pedro", "email": "pedro@x.com"})
	// A second, later visit from María plus one from Pedro.
	db.Insert(database.CollectionConsultations, database.Document{
		"doctorId": 1, "patientId": 1,
		"date":   time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC),
		"status": string(models.ConsultationCompleted),
	})
	db.Insert(database.CollectionConsultations, database.Document{
		"doctorId": 1, "patientId": 2,
		"date":   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		"status": string(models.ConsultationCompleted),
	})
	s := services.NewDoctorService(db)

	patients := s.Patients(1)
	require.Len(t, patients, 2, "each patient appears once")
	assert.Equal(t, "María", patients[0].Patient.Name)
	assert.Equal(t, time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC), patients[0].LastVisit,
		"LastVisit is the latest consultation date")
	assert.Equal(t, "Pedro", patients[1].Patient.Name)

	assert.Empty(t, s.Patients(9))
}

func TestDoctorConsultationsSorted(t *testing.T) {
	db := newClinic(t)
	db.Insert(database.CollectionConsultations, database.Document{
		"doctorId": 1, "patientId": 1,
		"date":   time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC),
		"status": string(models.ConsultationCompleted),
	})
	s := services.NewDoctorService(db)

	consultations := s.Consultations(1)
	require.Len(t, consultations, 2)
	assert.True(t, consultations[0].Date.After(consultations[1].Date), "most recent first")
}

func TestDoctorPrescriptionsSorted(t *testing.T) {
	db := newClinic(t)
	db.Insert(database.CollectionPrescriptions, database.Document{
		"doctorId": 1, "patientId": 1,
		"date":       time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC),
		"medication": "Ibuprofeno 400mg", "status": string(models.PrescriptionActive),
	})
	s := services.NewDoctorService(db)

	prescriptions := s.Prescriptions(1)
	require.Len(t, prescriptions, 2)
	assert.Equal(t, "Ibuprofeno 400mg", prescriptions[0].Medication)
	assert.Equal(t, "Paracetamol 500mg", prescriptions[1].Medication)
}
