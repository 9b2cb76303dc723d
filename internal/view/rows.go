package view

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hackgods/clinic-portal/internal/clinic"
)

const (
	MsgNoAppointmentsForDate = "No Appointments found for the selected date."
	MsgAppointmentsError     = "Error loading appointments. Please try again later."
	MsgNoAppointments        = "No appointments found."
)

// Column counts of the two appointment tables; placeholders span them.
const (
	doctorTableColumns  = 5
	patientTableColumns = 4
)

// PatientRow is one line of the doctor's daily appointment table.
func PatientRow(a clinic.Appointment) *html.Node {
	var p clinic.Patient
	if a.Patient != nil {
		p = *a.Patient
	}
	return el(atom.Tr, attrs("id", "appointment-"+strconv.FormatInt(a.ID, 10)),
		td(strconv.FormatInt(p.ID, 10)),
		td(p.Name),
		td(p.Phone),
		td(p.Email),
		el(atom.Td, nil,
			el(atom.A, attrs("href", "#", "class", "prescription-btn", "data-appointment", strconv.FormatInt(a.ID, 10)),
				text("Add Prescription")),
		),
	)
}

// AppointmentRow is one line of a patient's appointment history.
func AppointmentRow(a clinic.Appointment) *html.Node {
	when := ""
	if !a.AppointmentTime.IsZero() {
		when = a.AppointmentTime.Format("2006-01-02 15:04")
	}
	return el(atom.Tr, attrs("id", "appointment-"+strconv.FormatInt(a.ID, 10)),
		td(a.PatientName()),
		td(a.DoctorName()),
		td(when),
		td(a.Status.String()),
	)
}

// PatientRows renders the tbody rows for a doctor's day. An empty list yields
// a single full width placeholder row.
func PatientRows(appts []clinic.Appointment) Fragment {
	if len(appts) == 0 {
		return Fragment{PlaceholderRow(MsgNoAppointmentsForDate, doctorTableColumns, false)}
	}
	out := make(Fragment, 0, len(appts))
	for _, a := range appts {
		out = append(out, PatientRow(a))
	}
	return out
}

// AppointmentRows renders the tbody rows for a patient's appointments.
func AppointmentRows(appts []clinic.Appointment) Fragment {
	if len(appts) == 0 {
		return Fragment{PlaceholderRow(MsgNoAppointments, patientTableColumns, false)}
	}
	out := make(Fragment, 0, len(appts))
	for _, a := range appts {
		out = append(out, AppointmentRow(a))
	}
	return out
}

// PlaceholderRow is a table row with a single cell spanning columns.
func PlaceholderRow(msg string, columns int, isError bool) *html.Node {
	class := "text-center text-muted"
	if isError {
		class = "text-center text-danger"
	}
	return el(atom.Tr, nil,
		el(atom.Td, attrs("colspan", strconv.Itoa(columns), "class", class), text(msg)),
	)
}

// DoctorTableError and PatientTableError are the error rows for each table.
func DoctorTableError() *html.Node {
	return PlaceholderRow(MsgAppointmentsError, doctorTableColumns, true)
}

func PatientTableError() *html.Node {
	return PlaceholderRow(MsgAppointmentsError, patientTableColumns, true)
}

func td(s string) *html.Node {
	return el(atom.Td, nil, text(s))
}

func table(bodyID string, headers []string, rows Fragment) *html.Node {
	head := el(atom.Tr, nil)
	for _, h := range headers {
		head.AppendChild(el(atom.Th, nil, text(h)))
	}
	body := el(atom.Tbody, attrs("id", bodyID))
	appendAll(body, rows...)
	return el(atom.Table, attrs("class", "table"), el(atom.Thead, nil, head), body)
}

// PatientTable is the doctor dashboard table.
func PatientTable(rows Fragment) *html.Node {
	return table("patientTableBody", []string{"Patient ID", "Name", "Phone No.", "Email", "Prescription"}, rows)
}

// AppointmentTable is the patient appointments table.
func AppointmentTable(rows Fragment) *html.Node {
	return table("appointmentTableBody", []string{"Patient Name", "Doctor Name", "Date & Time", "Status"}, rows)
}
