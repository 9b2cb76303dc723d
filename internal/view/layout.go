package view

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hackgods/clinic-portal/internal/session"
)

// ScriptPath is where the delegated event script is served.
const ScriptPath = "/static/portal.js"

type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a one-shot message shown above the page content. It replaces the
// alert() calls of a browser-only client.
type Notice struct {
	Kind NoticeKind
	Text string
}

func (n Notice) IsZero() bool {
	return n.Text == ""
}

// Node renders the banner, or nil for the zero notice.
func (n Notice) Node() *html.Node {
	if n.IsZero() {
		return nil
	}
	kind := n.Kind
	if kind == "" {
		kind = NoticeInfo
	}
	return el(atom.Div, attrs("id", "notice", "class", "notice notice-"+string(kind), "role", "alert"), text(n.Text))
}

// Page is a full document: header for Role, optional notice, body, footer.
type Page struct {
	Title     string
	Role      session.Role
	CSRFToken string
	Notice    Notice
	Year      int
	Body      []*html.Node
}

// Document assembles the page into a node tree ready for Render.
func (p Page) Document() *html.Node {
	title := p.Title
	if title == "" {
		title = "HealthCare"
	}

	head := el(atom.Head, nil,
		el(atom.Meta, attrs("charset", "utf-8")),
		el(atom.Meta, attrs("name", "viewport", "content", "width=device-width, initial-scale=1")),
		el(atom.Title, nil, text(title)),
		el(atom.Script, attrs("src", ScriptPath, "defer", "defer")),
	)

	main := el(atom.Main, attrs("class", "main-content"))
	appendAll(main, p.Body...)

	body := el(atom.Body, nil,
		Header(p.Role, p.CSRFToken),
		p.Notice.Node(),
		main,
		Footer(p.Year),
	)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(el(atom.Html, attrs("lang", "en"), head, body))
	return doc
}
