package models

import "time"

// Patient is a patient record in the patients collection.
type Patient struct {
	ID        int
	UserID    int // back-link to the account created at registration, 0 for admin-added patients
	Name      string
	Email     string
	Phone     string
	Age       int // 0 when not provided yet (self-registered patients start without one)
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PatientFromDocument builds a typed patient from a store document.
func PatientFromDocument(doc map[string]any) Patient {
	return Patient{
		ID:        docInt(doc, "id"),
		UserID:    docInt(doc, "userId"),
		Name:      docString(doc, "name"),
		Email:     docString(doc, "email"),
		Phone:     docString(doc, "phone"),
		Age:       docInt(doc, "age"),
		IsActive:  docBool(doc, "isActive"),
		CreatedAt: docTime(doc, "createdAt"),
		UpdatedAt: docTime(doc, "updatedAt"),
	}
}
