package view

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hackgods/clinic-portal/internal/session"
)

// csrfField is the form field gorilla/csrf reads the token from.
const csrfField = "gorilla.csrf.Token"

// Header renders the navigation bar for role. csrfToken is embedded in the
// logout form and may be empty when CSRF protection is off.
func Header(role session.Role, csrfToken string) *html.Node {
	caps := CapabilityFor(role)

	nav := el(atom.Nav, attrs("class", "nav-links"))
	for _, item := range caps.Nav {
		nav.AppendChild(navItem(item, csrfToken))
	}

	return el(atom.Header, attrs("id", "header", "class", "header"),
		el(atom.Div, attrs("class", "nav-wrapper"),
			el(atom.A, attrs("href", caps.Home, "class", "logo-link"),
				el(atom.H2, attrs("class", "logo"), text("HealthCare")),
			),
			nav,
		),
	)
}

func navItem(item NavItem, csrfToken string) *html.Node {
	if !item.Post {
		return el(atom.A, attrs("id", item.ID, "href", item.Href, "class", item.Class), text(item.Label))
	}
	return el(atom.Form, attrs("method", "post", "action", item.Href, "class", "nav-form"),
		csrfInput(csrfToken),
		el(atom.Button, attrs("id", item.ID, "type", "submit", "class", "link-button"), text(item.Label)),
	)
}

func csrfInput(token string) *html.Node {
	if token == "" {
		return nil
	}
	return el(atom.Input, attrs("type", "hidden", "name", csrfField, "value", token))
}
