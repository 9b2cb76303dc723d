package view

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hackgods/clinic-portal/internal/clinic"
)

// Specialties offered in the doctor filter and the add doctor form.
var Specialties = []string{
	"Cardiology",
	"Dermatology",
	"Neurology",
	"Pediatrics",
	"Orthopedics",
	"Gynecology",
	"Psychiatry",
	"Dentistry",
	"Ophthalmology",
	"ENT",
	"Urology",
	"Oncology",
	"Gastroenterology",
	"General",
}

// TimeSlots are the availability slots a doctor can be given.
var TimeSlots = []string{
	"09:00-10:00",
	"10:00-11:00",
	"11:00-12:00",
	"14:00-15:00",
	"15:00-16:00",
	"16:00-17:00",
}

// LoginKind selects which credentials a login form collects.
type LoginKind string

const (
	LoginAdmin   LoginKind = "admin"
	LoginDoctor  LoginKind = "doctor"
	LoginPatient LoginKind = "patient"
)

func ParseLoginKind(s string) (LoginKind, bool) {
	switch k := LoginKind(s); k {
	case LoginAdmin, LoginDoctor, LoginPatient:
		return k, true
	default:
		return "", false
	}
}

func field(label, name, typ, value string, required bool) *html.Node {
	input := el(atom.Input, attrs("id", name, "name", name, "type", typ, "value", value))
	if required {
		input.Attr = append(input.Attr, html.Attribute{Key: "required"})
	}
	return el(atom.Label, attrs("for", name), text(label), input)
}

func submit(label string) *html.Node {
	return el(atom.Button, attrs("type", "submit", "class", "dashboard-btn"), text(label))
}

// LoginForm renders the modal body for kind. Admins log in with a username,
// everyone else with an email.
func LoginForm(kind LoginKind, csrfToken string) *html.Node {
	user := field("Email", "email", "email", "", true)
	title := "Login"
	switch kind {
	case LoginAdmin:
		user = field("Username", "username", "text", "", true)
		title = "Admin Login"
	case LoginDoctor:
		title = "Doctor Login"
	case LoginPatient:
		title = "Patient Login"
	}
	return el(atom.Div, attrs("id", "modal", "class", "modal"),
		el(atom.H2, nil, text(title)),
		el(atom.Form, attrs("method", "post", "action", "/login/"+string(kind), "id", "loginForm"),
			csrfInput(csrfToken),
			user,
			field("Password", "password", "password", "", true),
			submit("Login"),
		),
	)
}

// SignupForm renders the patient registration form.
func SignupForm(csrfToken string) *html.Node {
	return el(atom.Div, attrs("id", "modal", "class", "modal"),
		el(atom.H2, nil, text("Patient Signup")),
		el(atom.Form, attrs("method", "post", "action", "/signup", "id", "signupForm"),
			csrfInput(csrfToken),
			field("Name", "name", "text", "", true),
			field("Email", "email", "email", "", true),
			field("Password", "password", "password", "", true),
			field("Phone", "phone", "tel", "", false),
			field("Address", "address", "text", "", false),
			submit("Signup"),
		),
	)
}

// AddDoctorForm renders the admin form that creates a doctor.
func AddDoctorForm(csrfToken string) *html.Node {
	specialty := el(atom.Select, attrs("id", "specialty", "name", "specialty"))
	for _, s := range Specialties {
		specialty.AppendChild(el(atom.Option, attrs("value", s), text(s)))
	}

	slots := el(atom.Fieldset, attrs("class", "availability"), el(atom.Legend, nil, text("Availability")))
	for _, slot := range TimeSlots {
		slots.AppendChild(el(atom.Label, nil,
			el(atom.Input, attrs("type", "checkbox", "name", "availability", "value", slot)),
			text(slot),
		))
	}

	return el(atom.Div, attrs("id", "addDoctor", "class", "modal"),
		el(atom.H2, nil, text("Add Doctor")),
		el(atom.Form, attrs("method", "post", "action", "/admin/doctors", "id", "addDoctorForm"),
			csrfInput(csrfToken),
			field("Name", "name", "text", "", true),
			el(atom.Label, attrs("for", "specialty"), text("Specialty"), specialty),
			field("Email", "email", "email", "", true),
			field("Password", "password", "password", "", true),
			field("Mobile", "mobile", "tel", "", false),
			slots,
			submit("Save"),
		),
	)
}

func option(value, label, selected string) *html.Node {
	o := el(atom.Option, attrs("value", value), text(label))
	if value == selected {
		o.Attr = append(o.Attr, html.Attribute{Key: "selected"})
	}
	return o
}

// filterForm is a GET form the delegated script submits on every change,
// swapping the response into target.
func filterForm(action, target string, controls ...*html.Node) *html.Node {
	return el(atom.Form, attrs(
		"method", "get",
		"action", action,
		"class", "filter-form",
		"data-filter", "true",
		"data-target", target,
	), controls...)
}

// DoctorFilterForm renders the name/time/specialty filter for a doctor list
// whose fragments are served at action.
func DoctorFilterForm(action string, f clinic.DoctorFilter) *html.Node {
	timeSel := el(atom.Select, attrs("id", "filterTime", "name", "time"),
		option("", "Sort by Time", f.Time),
		option("AM", "AM", f.Time),
		option("PM", "PM", f.Time),
	)
	specSel := el(atom.Select, attrs("id", "filterSpecialty", "name", "specialty"),
		option("", "Filter by Specialty", f.Specialty),
	)
	for _, s := range Specialties {
		specSel.AppendChild(option(s, s, f.Specialty))
	}
	return filterForm(action, "content",
		el(atom.Input, attrs("id", "searchBar", "name", "name", "type", "search",
			"placeholder", "Search by doctor name", "value", f.Name)),
		timeSel,
		specSel,
	)
}

// DoctorDateFilterForm renders the doctor dashboard date and patient search.
func DoctorDateFilterForm(f clinic.DoctorAppointmentFilter) *html.Node {
	return filterForm("/doctor/appointments/fragment", "patientTableBody",
		el(atom.Input, attrs("id", "searchBar", "name", "patientName", "type", "search",
			"placeholder", "Search by patient name", "value", f.PatientName)),
		el(atom.Button, attrs("id", "todayButton", "type", "button", "data-action", "today",
			"data-field", "datePicker"), text("Today")),
		el(atom.Input, attrs("id", "datePicker", "name", "date", "type", "date", "value", f.Date)),
	)
}

// AppointmentFilterForm renders the patient appointment filter.
func AppointmentFilterForm(f clinic.AppointmentFilter) *html.Node {
	return filterForm("/patient/appointments", "appointmentTableBody",
		el(atom.Input, attrs("id", "searchBar", "name", "name", "type", "search",
			"placeholder", "Search by doctor name", "value", f.Name)),
		el(atom.Select, attrs("id", "appointmentFilter", "name", "condition"),
			option("", "All Appointments", f.Condition),
			option("pending", "Upcoming Appointments", f.Condition),
			option("consulted", "Past Appointments", f.Condition),
		),
	)
}

// BookingOverlay renders the booking dialog for a logged in patient.
func BookingOverlay(d clinic.Doctor, p clinic.Patient, today, csrfToken string) *html.Node {
	slots := el(atom.Select, attrs("id", "appointment-time", "name", "time"))
	for _, s := range d.Availability {
		slots.AppendChild(el(atom.Option, attrs("value", s), text(s)))
	}

	date := el(atom.Input, attrs("id", "appointment-date", "name", "date", "type", "date", "value", today, "min", today))
	date.Attr = append(date.Attr, html.Attribute{Key: "required"})

	return el(atom.Div, attrs("id", "bookingOverlay", "class", "modalApp"),
		el(atom.H2, nil, text("Book Appointment")),
		el(atom.Form, attrs("method", "post", "action", "/patient/book/"+strconv.FormatInt(d.ID, 10)+"/confirm"),
			csrfInput(csrfToken),
			el(atom.Input, attrs("class", "input-field", "type", "text", "value", p.Name, "disabled", "disabled")),
			el(atom.Input, attrs("class", "input-field", "type", "text", "value", d.Name, "disabled", "disabled")),
			el(atom.Input, attrs("class", "input-field", "type", "text", "value", d.Specialty, "disabled", "disabled")),
			el(atom.Input, attrs("class", "input-field", "type", "email", "value", d.Email, "disabled", "disabled")),
			date,
			slots,
			el(atom.Button, attrs("type", "submit", "class", "confirm-booking"), text("Confirm Booking")),
		),
		el(atom.A, attrs("href", "/patient/dashboard", "class", "cancel"), text("Cancel")),
	)
}

// RoleSelection is the index page body: pick a role to log in as, or
// continue as a patient.
func RoleSelection() *html.Node {
	return el(atom.Div, attrs("class", "main-content"),
		el(atom.H2, nil, text("Select Your Role:")),
		el(atom.A, attrs("href", "/login/admin", "class", "dashboard-btn"), text("Admin")),
		el(atom.A, attrs("href", "/login/doctor", "class", "dashboard-btn"), text("Doctor")),
		el(atom.A, attrs("href", "/patient", "class", "dashboard-btn"), text("Patient")),
	)
}
