package view

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var footerColumns = []struct {
	title string
	links []string
}{
	{"Company", []string{"About", "Careers", "Press"}},
	{"Support", []string{"Account", "Help Center", "Contact"}},
	{"Legals", []string{"Terms", "Privacy Policy", "Licensing"}},
}

// Footer renders the static site footer. year is passed in so the output
// only depends on its arguments.
func Footer(year int) *html.Node {
	container := el(atom.Div, attrs("class", "footer-container"),
		el(atom.Div, attrs("class", "footer-logo"),
			el(atom.P, nil, text(fmt.Sprintf("© %d HealthCare. All rights reserved.", year))),
		),
	)
	for _, col := range footerColumns {
		column := el(atom.Div, attrs("class", "footer-column"), el(atom.H4, nil, text(col.title)))
		for _, l := range col.links {
			column.AppendChild(el(atom.A, attrs("href", "#"), text(l)))
		}
		container.AppendChild(column)
	}
	return el(atom.Footer, attrs("id", "footer", "class", "footer"), container)
}
