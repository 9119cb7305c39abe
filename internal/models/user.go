package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role identifies which dashboard an account belongs to.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether the role is one of the known account types.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// User is an account in the users collection. Doctor and patient accounts
// carry the id of the party row created alongside them at registration.
type User struct {
	ID        int
	Name      string
	Email     string
	Password  string // bcrypt hash, never plain text
	Role      Role
	DoctorID  int
	PatientID int
	IsActive  bool
	LastLogin time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HashPassword hashes a plain-text password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// SetPassword hashes a password and sets it on the user.
func (u *User) SetPassword(password string) error {
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// CheckPassword compares a password with the user's hashed password.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// ToDocument flattens the user into a store document. Zero-valued optional
// fields (party links, lastLogin) are omitted rather than stored as zeroes.
func (u *User) ToDocument() map[string]any {
	doc := map[string]any{
		"name":     u.Name,
		"email":    u.Email,
		"password": u.Password,
		"role":     string(u.Role),
		"isActive": u.IsActive,
	}
	if u.ID != 0 {
		doc["id"] = u.ID
	}
	if u.DoctorID != 0 {
		doc["doctorId"] = u.DoctorID
	}
	if u.PatientID != 0 {
		doc["patientId"] = u.PatientID
	}
	if !u.LastLogin.IsZero() {
		doc["lastLogin"] = u.LastLogin
	}
	if !u.CreatedAt.IsZero() {
		doc["createdAt"] = u.CreatedAt
	}
	if !u.UpdatedAt.IsZero() {
		doc["updatedAt"] = u.UpdatedAt
	}
	return doc
}

// UserFromDocument builds a typed user from a store document.
func UserFromDocument(doc map[string]any) User {
	return User{
		ID:        docInt(doc, "id"),
		Name:      docString(doc, "name"),
		Email:     docString(doc, "email"),
		Password:  docString(doc, "password"),
		Role:      Role(docString(doc, "role")),
		DoctorID:  docInt(doc, "doctorId"),
		PatientID: docInt(doc, "patientId"),
		IsActive:  docBool(doc, "isActive"),
		LastLogin: docTime(doc, "lastLogin"),
		CreatedAt: docTime(doc, "createdAt"),
		UpdatedAt: docTime(doc, "updatedAt"),
	}
}
