package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Ryavnn/Employee-Management-system/guard"
)

var _ guard.ViewRouter = (*HTTPRouter)(nil)

// HTTPRouter performs guard redirects. When the original location is
// preserved it travels as the "from" query parameter of the destination.
type HTTPRouter struct{}

func (HTTPRouter) Redirect(w http.ResponseWriter, r *http.Request, destination string, preserveOriginal bool) {
	if preserveOriginal {
		destination = withQuery(destination, paramFrom, r.URL.RequestURI())
	}
	redirectSuccess(w, r, destination)
}

// withQuery appends key=value to path, keeping any existing query
func withQuery(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// isSafeLocalPath accepts only absolute paths on this host, so a "from"
// parameter can never send the browser elsewhere.
func isSafeLocalPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	if strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, paramError, errorMsg))
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
