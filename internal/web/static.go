package web

import (
	_ "embed"
	"net/http"

	"github.com/hackgods/clinic-portal/internal/view"
)

const staticScriptPath = view.ScriptPath

//go:embed static/portal.js
var portalScript []byte

func serveScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(portalScript)
}
