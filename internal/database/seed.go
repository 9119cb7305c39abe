package database

import (
	"log"
	"time"

	"carvy-clinic/internal/models"
)

// Seed populates the database with the default admin account plus one sample
// doctor and patient (each with a linked user account), a completed
// consultation between them and an active prescription for it. Intended for
// an empty database on first run.
func (db *Database) Seed() {
	log.Printf("Seeding default clinic data")

	adminHash, err := models.HashPassword("admin123")
	if err != nil {
		log.Printf("Error hashing seed password: %v", err)
		return
	}
	db.Insert(CollectionUsers, Document{
		"email":    "admin@carvy.com",
		"password": adminHash,
		"role":     string(models.RoleAdmin),
		"name":     "Administrador",
		"isActive": true,
	})

	doctorID := db.Insert(CollectionDoctors, Document{
		"name":      "Dr. Juan Pérez",
		"email":     "doctor@carvy.com",
		"specialty": "Medicina General",
		"license":   "MED-001",
		"isActive":  true,
	})
	doctorHash, err := models.HashPassword("doctor123")
	if err != nil {
		log.Printf("Error hashing seed password: %v", err)
		return
	}
	db.Insert(CollectionUsers, Document{
		"email":    "doctor@carvy.com",
		"password": doctorHash,
		"role":     string(models.RoleDoctor),
		"name":     "Dr. Juan Pérez",
		"doctorId": doctorID,
		"isActive": true,
	})

	patientID := db.Insert(CollectionPatients, Document{
		"name":     "María García",
		"email":    "patient@carvy.com",
		"phone":    "555-1234",
		"age":      35,
		"isActive": true,
	})
	patientHash, err := models.HashPassword("patient123")
	if err != nil {
		log.Printf("Error hashing seed password: %v", err)
		return
	}
	db.Insert(CollectionUsers, Document{
		"email":     "patient@carvy.com",
		"password":  patientHash,
		"role":      string(models.RolePatient),
		"name":      "María García",
		"patientId": patientID,
		"isActive":  true,
	})

	consultationID := db.Insert(CollectionConsultations, Document{
		"doctorId":  doctorID,
		"patientId": patientID,
		"date":      time.Now(),
		"diagnosis": "Consulta de rutina - Todo normal",
		"status":    string(models.ConsultationCompleted),
	})

	db.Insert(CollectionPrescriptions, Document{
		"consultationId": consultationID,
		"doctorId":       doctorID,
		"patientId":      patientID,
		"medication":     "Paracetamol 500mg",
		"instructions":   "Tomar 1 tableta cada 8 horas por 3 días después de las comidas",
		"date":           time.Now(),
		"status":         string(models.PrescriptionActive),
	})
}
