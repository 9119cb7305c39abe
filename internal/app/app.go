package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"carvy-clinic/internal/auth"
	"carvy-clinic/internal/config"
	"carvy-clinic/internal/database"
	"carvy-clinic/internal/models"
	"carvy-clinic/internal/services"
)

// dateLayout is how the shell reads and prints consultation dates.
const dateLayout = "2006-01-02 15:04"

// App is the interactive shell: a login screen followed by one menu loop per
// role. It is the only place the services are constructed and wired together.
type App struct {
	db      *database.Database
	auth    *auth.Auth
	admin   *services.AdminService
	doctor  *services.DoctorService
	patient *services.PatientService

	in  *bufio.Scanner
	out io.Writer
}

// New wires the application services over one shared database handle.
func New(db *database.Database, cfg *config.Config) *App {
	return &App{
		db:      db,
		auth:    auth.New(db, cfg),
		admin:   services.NewAdminService(db),
		doctor:  services.NewDoctorService(db),
		patient: services.NewPatientService(db),
	}
}

// Run drives the session until the user exits or input ends.
func (a *App) Run(in io.Reader, out io.Writer) error {
	a.in = bufio.NewScanner(in)
	a.out = out

	fmt.Fprintln(out, "CARVY - Clinic Management")
	for {
		fmt.Fprintln(out, "\n1) Log in  2) Register  0) Exit")
		switch a.readLine("> ") {
		case "1":
			a.loginScreen()
		case "2":
			a.registerScreen()
		case "0", "":
			return nil
		default:
			a.alert("Unknown option")
		}
	}
}

func (a *App) loginScreen() {
	email := a.readLine("Email: ")
	password := a.readLine("Password: ")
	res := a.auth.Login(email, password)
	if !res.Success {
		a.alert(res.Message)
		return
	}
	fmt.Fprintf(a.out, "\nWelcome, %s (%s)\n", res.User.Name, res.User.Role)

	switch res.User.Role {
	case models.RoleAdmin:
		a.adminDashboard(res.Token)
	case models.RoleDoctor:
		if res.User.Doctor == nil {
			a.alert("No doctor record is linked to this account")
			return
		}
		a.doctorDashboard(res.User.Doctor.ID)
	case models.RolePatient:
		if res.User.Patient == nil {
			a.alert("No patient record is linked to this account")
			return
		}
		a.patientDashboard(res.User.Patient.ID)
	}
}

func (a *App) registerScreen() {
	req := auth.RegisterRequest{
		Name:     a.readLine("Name: "),
		Email:    a.readLine("Email: "),
		Password: a.readLine("Password: "),
		Role:     models.Role(a.readLine("Account type (doctor/patient): ")),
	}
	if req.Role == models.RoleDoctor {
		req.Specialty = a.readLine("Specialty: ")
		req.License = a.readLine("License: ")
	}
	res := a.auth.Register(req)
	a.alert(res.Message)
}

func (a *App) adminDashboard(token string) {
	for {
		fmt.Fprintln(a.out, "\n-- Admin --")
		fmt.Fprintln(a.out, "1) Stats  2) Doctors  3) Add doctor  4) Edit doctor  5) Delete doctor")
		fmt.Fprintln(a.out, "6) Patients  7) Add patient  8) Edit patient  9) Delete patient")
		fmt.Fprintln(a.out, "10) Consultations  11) Add consultation  12) Delete consultation")
		fmt.Fprintln(a.out, "13) Prescriptions  14) Add prescription  15) Set prescription status  16) Delete prescription")
		fmt.Fprintln(a.out, "17) Export backup  18) Import backup  0) Log out")

		choice := a.readLine("> ")
		if _, err := a.auth.RequireRole(token, models.RoleAdmin); err != nil {
			a.alert("Session expired, please log in again")
			return
		}
		switch choice {
		case "1":
			s := a.admin.Stats()
			fmt.Fprintf(a.out, "Doctors: %d  Patients: %d  Consultations: %d  Prescriptions: %d  Last saved: %s\n",
				s.TotalDoctors, s.TotalPatients, s.TotalConsultations, s.TotalPrescriptions, s.LastSaved)
		case "2":
			a.printDoctors()
		case "3":
			_, err := a.admin.CreateDoctor(a.readDoctorForm())
			a.report(err, "Doctor added")
		case "4":
			id := a.readInt("Doctor id: ")
			_, err := a.admin.UpdateDoctor(id, a.readDoctorForm())
			a.report(err, "Doctor updated")
		case "5":
			a.report(a.admin.DeleteDoctor(a.readInt("Doctor id: ")), "Doctor deleted")
		case "6":
			a.printPatients()
		case "7":
			_, err := a.admin.CreatePatient(a.readPatientForm())
			a.report(err, "Patient added")
		case "8":
			id := a.readInt("Patient id: ")
			_, err := a.admin.UpdatePatient(id, a.readPatientForm())
			a.report(err, "Patient updated")
		case "9":
			a.report(a.admin.DeletePatient(a.readInt("Patient id: ")), "Patient deleted")
		case "10":
			a.printConsultations()
		case "11":
			_, err := a.admin.CreateConsultation(a.readConsultationForm())
			a.report(err, "Consultation added")
		case "12":
			a.report(a.admin.DeleteConsultation(a.readInt("Consultation id: ")), "Consultation deleted")
		case "13":
			a.printPrescriptions()
		case "14":
			_, err := a.admin.CreatePrescription(a.readPrescriptionForm())
			a.report(err, "Prescription added")
		case "15":
			id := a.readInt("Prescription id: ")
			next := models.PrescriptionStatus(a.readLine("New status (dispensed/expired): "))
			_, err := a.admin.UpdatePrescriptionStatus(id, next)
			a.report(err, "Prescription updated")
		case "16":
			a.report(a.admin.DeletePrescription(a.readInt("Prescription id: ")), "Prescription deleted")
		case "17":
			a.exportBackup()
		case "18":
			a.importBackup()
		case "0":
			return
		default:
			a.alert("Unknown option")
		}
	}
}

func (a *App) doctorDashboard(doctorID int) {
	for {
		fmt.Fprintln(a.out, "\n-- Doctor --")
		fmt.Fprintln(a.out, "1) My patients  2) My consultations  3) My prescriptions  0) Log out")
		switch a.readLine("> ") {
		case "1":
			w := a.table()
			fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tLAST VISIT")
			for _, p := range a.doctor.Patients(doctorID) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Patient.Name, p.Patient.Email, p.Patient.Phone, formatDate(p.LastVisit))
			}
			w.Flush()
		case "2":
			w := a.table()
			fmt.Fprintln(w, "DATE\tPATIENT\tDIAGNOSIS\tSTATUS")
			for _, c := range a.doctor.Consultations(doctorID) {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", formatDate(c.Date), c.PatientID, c.Diagnosis, c.Status)
			}
			w.Flush()
		case "3":
			w := a.table()
			fmt.Fprintln(w, "DATE\tPATIENT\tMEDICATION\tSTATUS")
			for _, p := range a.doctor.Prescriptions(doctorID) {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", formatDate(p.Date), p.PatientID, p.Medication, p.Status)
			}
			w.Flush()
		case "0":
			return
		default:
			a.alert("Unknown option")
		}
	}
}

func (a *App) patientDashboard(patientID int) {
	for {
		fmt.Fprintln(a.out, "\n-- Patient --")
		fmt.Fprintln(a.out, "1) Upcoming appointments  2) Schedule  3) Cancel appointment")
		fmt.Fprintln(a.out, "4) History  5) My prescriptions  6) Profile  0) Log out")
		switch a.readLine("> ") {
		case "1":
			w := a.table()
			fmt.Fprintln(w, "ID\tDATE\tDOCTOR\tSPECIALTY\tSTATUS")
			for _, v := range a.patient.UpcomingAppointments(patientID) {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					v.Consultation.ID, formatDate(v.Consultation.Date), v.DoctorName, v.DoctorSpecialty, v.Consultation.Status)
			}
			w.Flush()
		case "2":
			a.printDoctors()
			req := services.ScheduleRequest{
				DoctorID: a.readInt("Doctor id: "),
				Date:     a.readDate("Date (" + dateLayout + "): "),
				Reason:   a.readLine("Reason: "),
			}
			_, err := a.patient.Schedule(patientID, req)
			a.report(err, "Appointment scheduled")
		case "3":
			_, err := a.patient.CancelAppointment(patientID, a.readInt("Consultation id: "))
			a.report(err, "Appointment cancelled")
		case "4":
			w := a.table()
			fmt.Fprintln(w, "DATE\tDOCTOR\tDIAGNOSIS\tSTATUS")
			for _, v := range a.patient.History(patientID) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					formatDate(v.Consultation.Date), v.DoctorName, v.Consultation.Diagnosis, v.Consultation.Status)
			}
			w.Flush()
		case "5":
			w := a.table()
			fmt.Fprintln(w, "DATE\tMEDICATION\tINSTRUCTIONS\tSTATUS")
			for _, p := range a.patient.Prescriptions(patientID) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatDate(p.Date), p.Medication, p.Instructions, p.Status)
			}
			w.Flush()
		case "6":
			p, err := a.patient.Profile(patientID)
			if err != nil {
				a.alert(err.Error())
				continue
			}
			fmt.Fprintf(a.out, "Name: %s\nEmail: %s\nPhone: %s\nAge: %d\nRegistered: %s\n",
				p.Name, p.Email, p.Phone, p.Age, formatDate(p.CreatedAt))
		case "0":
			return
		default:
			a.alert("Unknown option")
		}
	}
}

func (a *App) printDoctors() {
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSPECIALTY\tLICENSE")
	for _, d := range a.admin.ListDoctors() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Email, d.Specialty, d.License)
	}
	w.Flush()
}

func (a *App) printPatients() {
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tAGE")
	for _, p := range a.admin.ListPatients() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Email, p.Phone, p.Age)
	}
	w.Flush()
}

func (a *App) printConsultations() {
	w := a.table()
	fmt.Fprintln(w, "ID\tDOCTOR\tPATIENT\tDATE\tDIAGNOSIS\tSTATUS")
	for _, v := range a.admin.ListConsultations() {
		c := v.Consultation
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, v.DoctorName, v.PatientName, formatDate(c.Date), c.Diagnosis, c.Status)
	}
	w.Flush()
}

func (a *App) printPrescriptions() {
	w := a.table()
	fmt.Fprintln(w, "ID\tDOCTOR\tPATIENT\tDATE\tMEDICATION\tSTATUS")
	for _, v := range a.admin.ListPrescriptions() {
		p := v.Prescription
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID, v.DoctorName, v.PatientName, formatDate(p.Date), p.Medication, p.Status)
	}
	w.Flush()
}

func (a *App) readDoctorForm() services.DoctorRequest {
	return services.DoctorRequest{
		Name:      a.readLine("Name: "),
		Email:     a.readLine("Email: "),
		Specialty: a.readLine("Specialty: "),
		License:   a.readLine("License: "),
	}
}

func (a *App) readPatientForm() services.PatientRequest {
	return services.PatientRequest{
		Name:  a.readLine("Name: "),
		Email: a.readLine("Email: "),
		Phone: a.readLine("Phone: "),
		Age:   a.readInt("Age: "),
	}
}

func (a *App) readConsultationForm() services.ConsultationRequest {
	return services.ConsultationRequest{
		DoctorID:  a.readInt("Doctor id: "),
		PatientID: a.readInt("Patient id: "),
		Date:      a.readDate("Date (" + dateLayout + "): "),
		Diagnosis: a.readLine("Diagnosis: "),
	}
}

func (a *App) readPrescriptionForm() services.PrescriptionRequest {
	return services.PrescriptionRequest{
		ConsultationID: a.readInt("Consultation id (0 for none): "),
		DoctorID:       a.readInt("Doctor id: "),
		PatientID:      a.readInt("Patient id: "),
		Date:           a.readDate("Date (" + dateLayout + "): "),
		Medication:     a.readLine("Medication: "),
		Instructions:   a.readLine("Instructions: "),
	}
}

func (a *App) exportBackup() {
	path := a.readLine("Backup file: ")
	data, err := a.admin.ExportBackup()
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	a.report(err, "Backup written to "+path)
}

func (a *App) importBackup() {
	path := a.readLine("Backup file: ")
	data, err := os.ReadFile(path)
	if err == nil {
		err = a.admin.ImportBackup(data)
	}
	a.report(err, "Backup restored")
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *App) readLine(prompt string) string {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *App) readInt(prompt string) int {
	n, err := strconv.Atoi(a.readLine(prompt))
	if err != nil {
		return 0
	}
	return n
}

func (a *App) readDate(prompt string) time.Time {
	t, err := time.ParseInLocation(dateLayout, a.readLine(prompt), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// alert shows a transient message; failures never end the session.
func (a *App) alert(message string) {
	fmt.Fprintln(a.out, "! "+message)
}

func (a *App) report(err error, success string) {
	if err != nil {
		a.alert(err.Error())
		return
	}
	fmt.Fprintln(a.out, success)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(dateLayout)
}
