package view

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/session"
)

const (
	MsgNoDoctors         = "No doctors found"
	MsgNoFilteredDoctors = "No doctors found with the given filters."
	MsgDoctorsError      = "Error loading doctors. Please try again later."
	MsgLoginFirst        = "Patient needs to login first."
)

// DoctorCardID is the element id of the card for doctor id.
func DoctorCardID(id int64) string {
	return "doctor-" + strconv.FormatInt(id, 10)
}

// DoctorCard renders one doctor with the single action role is allowed.
func DoctorCard(d clinic.Doctor, role session.Role, csrfToken string) *html.Node {
	info := el(atom.Div, attrs("class", "doctor-info"),
		el(atom.H3, nil, text(d.Name)),
		el(atom.P, attrs("class", "specialty"), text(d.Specialty)),
		el(atom.P, attrs("class", "email"), text(d.Email)),
		el(atom.P, attrs("class", "availability"), text(d.AvailabilityText())),
	)

	actions := el(atom.Div, attrs("class", "card-actions"))
	appendAll(actions, cardAction(d, CapabilityFor(role).CardAction, csrfToken))

	return el(atom.Div, attrs("id", DoctorCardID(d.ID), "class", "doctor-card"), info, actions)
}

func cardAction(d clinic.Doctor, action CardAction, csrfToken string) *html.Node {
	id := strconv.FormatInt(d.ID, 10)
	switch action {
	case CardActionDelete:
		return el(atom.Form, attrs(
			"method", "post",
			"action", "/admin/doctors/"+id+"/delete",
			"data-confirm", fmt.Sprintf("Delete Dr. %s?", d.Name),
			"data-remove", DoctorCardID(d.ID),
		),
			csrfInput(csrfToken),
			el(atom.Button, attrs("type", "submit", "class", "delete-btn"), text("Delete")),
		)
	case CardActionLoginRequired:
		return el(atom.Button, attrs(
			"type", "button",
			"class", "book-btn",
			"data-action", "login-required",
			"data-message", MsgLoginFirst,
		), text("Book Now"))
	case CardActionBook:
		return el(atom.Form, attrs("method", "post", "action", "/patient/book/"+id),
			csrfInput(csrfToken),
			el(atom.Button, attrs("type", "submit", "class", "book-btn"), text("Book Now")),
		)
	default:
		return nil
	}
}

// DoctorList renders the children of the #content container: one card per
// doctor, or the empty placeholder. It never returns an empty fragment.
func DoctorList(doctors []clinic.Doctor, role session.Role, csrfToken, emptyText string) Fragment {
	if len(doctors) == 0 {
		return Fragment{Placeholder(emptyText, false)}
	}
	out := make(Fragment, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, DoctorCard(d, role, csrfToken))
	}
	return out
}

// Placeholder is the text shown in a list container instead of items.
func Placeholder(msg string, isError bool) *html.Node {
	class := "placeholder"
	if isError {
		class = "placeholder error"
	}
	return el(atom.P, attrs("class", class), text(msg))
}

// Container wraps children in the stable element the delegated script swaps
// fragments into.
func Container(id string, children Fragment) *html.Node {
	n := el(atom.Div, attrs("id", id, "class", id))
	appendAll(n, children...)
	return n
}
