package auth

import (
	"fmt"
	"strings"
	"time"

	"carvy-clinic/internal/config"
	"carvy-clinic/internal/database"
	"carvy-clinic/internal/models"
	"carvy-clinic/internal/utils"
)

// Auth runs the registration and login workflows against the store and
// validates session tokens for the role-gated services.
type Auth struct {
	db  *database.Database
	cfg *config.Config
}

// New creates an Auth service over the given database.
func New(db *database.Database, cfg *config.Config) *Auth {
	return &Auth{db: db, cfg: cfg}
}

// RegisterRequest carries a registration form. Doctors additionally require
// a specialty and license number.
type RegisterRequest struct {
	Name      string      `validate:"required"`
	Email     string      `validate:"required"`
	Password  string      `validate:"required,min=6"`
	Role      models.Role `validate:"required"`
	Specialty string
	License   string
}

// RegisterResponse reports the outcome of a registration attempt.
type RegisterResponse struct {
	utils.Result
	UserID int
}

// Register creates a user account. Doctor and patient registrations also
// create the party row in the matching collection and back-fill its userId.
// Validation failures come back as a failed Result, never an error.
func (a *Auth) Register(req RegisterRequest) RegisterResponse {
	req.Name = utils.Sanitize(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := utils.Validate(req); err != nil {
		return RegisterResponse{Result: utils.Fail(utils.FormatValidationError(err))}
	}
	if req.Role != models.RoleDoctor && req.Role != models.RolePatient {
		return RegisterResponse{Result: utils.Fail("invalid account type")}
	}
	if !utils.IsValidEmail(req.Email) {
		return RegisterResponse{Result: utils.Fail("the email is not valid")}
	}
	if !a.db.IsEmailUnique(req.Email, 0) {
		return RegisterResponse{Result: utils.Fail("this email is already registered")}
	}
	if req.Role == models.RoleDoctor && (req.Specialty == "" || req.License == "") {
		return RegisterResponse{Result: utils.Fail("specialty and license are required for doctors")}
	}

	var doctorID, patientID int
	if req.Role == models.RoleDoctor {
		doctorID = a.db.Insert(database.CollectionDoctors, database.Document{
			"name":      req.Name,
			"email":     req.Email,
			"specialty": utils.Sanitize(req.Specialty),
			"license":   utils.Sanitize(req.License),
			"isActive":  true,
		})
	}
	if req.Role == models.RolePatient {
		patientID = a.db.Insert(database.CollectionPatients, database.Document{
			"name":     req.Name,
			"email":    req.Email,
			"phone":    "",
			"age":      nil,
			"isActive": true,
		})
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		return RegisterResponse{Result: utils.Fail("failed to secure the password")}
	}

	userDoc := database.Document{
		"name":     req.Name,
		"email":    req.Email,
		"password": hash,
		"role":     string(req.Role),
		"isActive": true,
	}
	if doctorID != 0 {
		userDoc["doctorId"] = doctorID
	}
	if patientID != 0 {
		userDoc["patientId"] = patientID
	}
	userID := a.db.Insert(database.CollectionUsers, userDoc)

	// Back-fill the account id onto the party row.
	if doctorID != 0 {
		a.db.Update(database.CollectionDoctors, doctorID, database.Document{"userId": userID})
	}
	if patientID != 0 {
		a.db.Update(database.CollectionPatients, patientID, database.Document{"userId": userID})
	}

	return RegisterResponse{Result: utils.Ok("user registered successfully"), UserID: userID}
}

// UserData is the session view of an account, with the linked party row
// resolved for doctor and patient roles.
type UserData struct {
	ID        int
	Name      string
	Email     string
	Role      models.Role
	LastLogin time.Time
	Doctor    *models.Doctor
	Patient   *models.Patient
}

// LoginResponse reports the outcome of a login attempt. Token and User are
// set only on success.
type LoginResponse struct {
	utils.Result
	Token string
	User  *UserData
}

// Login verifies credentials, stamps lastLogin and issues a session token.
// Unknown emails and wrong passwords produce the same message.
func (a *Auth) Login(email, password string) LoginResponse {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResponse{Result: utils.Fail("email and password are required")}
	}

	doc, err := a.db.FindOne(database.CollectionUsers, database.Document{"email": email})
	if err != nil {
		return LoginResponse{Result: utils.Fail("invalid credentials")}
	}
	user := models.UserFromDocument(doc)

	if !user.IsActive {
		return LoginResponse{Result: utils.Fail("this account is disabled")}
	}
	if !user.CheckPassword(password) {
		return LoginResponse{Result: utils.Fail("invalid credentials")}
	}

	lastLogin := time.Now()
	a.db.Update(database.CollectionUsers, user.ID, database.Document{"lastLogin": lastLogin})
	user.LastLogin = lastLogin

	token, err := generateSessionToken(user, a.cfg)
	if err != nil {
		return LoginResponse{Result: utils.Fail("failed to start the session")}
	}

	return LoginResponse{
		Result: utils.Ok("login successful"),
		Token:  token,
		User:   a.userData(user),
	}
}

// CurrentUser resolves a session token back to its account.
func (a *Auth) CurrentUser(token string) (*UserData, error) {
	claims, err := ValidateToken(token, a.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	doc, err := a.db.FindByID(database.CollectionUsers, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", claims.UserID, err)
	}
	return a.userData(models.UserFromDocument(doc)), nil
}

// RequireRole validates a session token and checks it carries the given role.
func (a *Auth) RequireRole(token string, role models.Role) (*Claims, error) {
	claims, err := ValidateToken(token, a.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	if claims.Role != role {
		return nil, fmt.Errorf("this action requires the %s role", role)
	}
	return claims, nil
}

func (a *Auth) userData(user models.User) *UserData {
	data := &UserData{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		LastLogin: user.LastLogin,
	}
	if user.Role == models.RoleDoctor && user.DoctorID != 0 {
		if doc, err := a.db.FindByID(database.CollectionDoctors, user.DoctorID); err == nil {
			doctor := models.DoctorFromDocument(doc)
			data.Doctor = &doctor
		}
	}
	if user.Role == models.RolePatient && user.PatientID != 0 {
		if doc, err := a.db.FindByID(database.CollectionPatients, user.PatientID); err == nil {
			patient := models.PatientFromDocument(doc)
			data.Patient = &patient
		}
	}
	return data
}
