package view

import "github.com/hackgods/clinic-portal/internal/session"

// NavItem is one header affordance. Items with Post set are rendered as a
// form so that logout is never a plain GET.
type NavItem struct {
	ID    string
	Label string
	Href  string
	Post  bool
	Class string
}

type CardAction int

const (
	CardActionNone CardAction = iota
	CardActionDelete
	CardActionLoginRequired
	CardActionBook
)

// Capability is everything a role is allowed to see in the chrome and on a
// doctor card.
type Capability struct {
	Nav        []NavItem
	CardAction CardAction
	// Home is where the logo and post-login redirect point.
	Home string
}

var (
	navLogin  = NavItem{ID: "loginBtn", Label: "Login", Href: "/login/patient"}
	navSignup = NavItem{ID: "signupBtn", Label: "Sign Up", Href: "/signup"}
)

func logoutItem(id string) NavItem {
	return NavItem{ID: id, Label: "Logout", Href: "/logout", Post: true}
}

var capabilities = map[session.Role]Capability{
	session.RoleAdmin: {
		Nav: []NavItem{
			{ID: "addDocBtn", Label: "Add Doctor", Href: "/admin/doctors", Class: "adminBtn"},
			logoutItem("logoutBtn"),
		},
		CardAction: CardActionDelete,
		Home:       "/admin",
	},
	session.RoleDoctor: {
		Nav: []NavItem{
			{ID: "homeBtn", Label: "Home", Href: "/doctor"},
			logoutItem("logoutBtn"),
		},
		Home: "/doctor",
	},
	session.RolePatient: {
		Nav:        []NavItem{navLogin, navSignup},
		CardAction: CardActionLoginRequired,
		Home:       "/patient",
	},
	session.RoleLoggedPatient: {
		Nav: []NavItem{
			{ID: "homeBtn", Label: "Home", Href: "/patient/dashboard"},
			{ID: "appointmentsBtn", Label: "Appointments", Href: "/patient/appointments"},
			logoutItem("logoutPatientBtn"),
		},
		CardAction: CardActionBook,
		Home:       "/patient/dashboard",
	},
	session.RoleAnonymous: {
		Nav:  []NavItem{navLogin, navSignup},
		Home: "/",
	},
}

// CapabilityFor returns the capability of role. Roles missing from the table
// get the anonymous capability.
func CapabilityFor(role session.Role) Capability {
	if c, ok := capabilities[role]; ok {
		return c
	}
	return capabilities[session.RoleAnonymous]
}
