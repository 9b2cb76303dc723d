package web

import (
	"bytes"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/hackgods/clinic-portal/internal/session"
	"github.com/hackgods/clinic-portal/internal/view"
)

const fragmentHeader = "X-Requested-With"

// isFragment reports whether r came from the delegated script and expects a
// fragment rather than a page.
func isFragment(r *http.Request) bool {
	return r.Header.Get(fragmentHeader) == "portal"
}

func noticeFrom(r *http.Request) view.Notice {
	q := r.URL.Query()
	n := view.Notice{Text: q.Get("notice"), Kind: view.NoticeInfo}
	if q.Get("kind") == string(view.NoticeError) {
		n.Kind = view.NoticeError
	}
	return n
}

// page is the per-request input to a full page render.
type page struct {
	title  string
	notice view.Notice
	body   []*html.Node
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, p page) {
	sess := handleFrom(r)
	notice := p.notice
	if notice.IsZero() {
		notice = noticeFrom(r)
	}

	doc := view.Page{
		Title:     p.title,
		Role:      sess.Role(),
		CSRFToken: csrf.Token(r),
		Notice:    notice,
		Year:      h.now().Year(),
		Body:      p.body,
	}.Document()

	var buf bytes.Buffer
	if err := view.Render(&buf, doc); err != nil {
		h.serverError(w, r, err, "render page")
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (h *Handler) renderFragment(w http.ResponseWriter, r *http.Request, f view.Fragment) {
	var buf bytes.Buffer
	if err := view.RenderFragment(&buf, f); err != nil {
		h.serverError(w, r, err, "render fragment")
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.logFor(r).WithError(err).Error(msg)
	http.Error(w, "Something went wrong. Please try again later.", http.StatusInternalServerError)
}

func (h *Handler) logFor(r *http.Request) *logrus.Entry {
	fields := logrus.Fields{"request_id": GetRequestID(r.Context())}
	if s, ok := session.FromContext(r.Context()); ok {
		fields["role"] = s.Role().String()
	}
	return h.log.WithFields(fields)
}
