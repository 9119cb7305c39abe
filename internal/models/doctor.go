package models

import "time"

// Doctor is a clinician record in the doctors collection.
type Doctor struct {
	ID        int
	UserID    int // back-link to the account created at registration, 0 for admin-added doctors
	Name      string
	Email     string
	Specialty string
	License   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DoctorFromDocument builds a typed doctor from a store document.
func DoctorFromDocument(doc map[string]any) Doctor {
	return Doctor{
		ID:        docInt(doc, "id"),
		UserID:    docInt(doc, "userId"),
		Name:      docString(doc, "name"),
		Email:     docString(doc, "email"),
		Specialty: docString(doc, "specialty"),
		License:   docString(doc, "license"),
		IsActive:  docBool(doc, "isActive"),
		CreatedAt: docTime(doc, "createdAt"),
		UpdatedAt: docTime(doc, "updatedAt"),
	}
}
