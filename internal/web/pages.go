// Package web renders the gateway's HTML surfaces: landings, login forms, and
// the two non-content states a protected route may show (verifying, denied).
package web

import (
	"html/template"
	"net/http"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .RefreshAfter}}<meta http-equiv="refresh" content="{{.RefreshAfter}}">{{end}}
</head>
<body>
<main>
<h1>{{.Heading}}</h1>
<p>{{.Message}}</p>
{{if .LinkHref}}<p><a href="{{.LinkHref}}">{{.LinkText}}</a></p>{{end}}
</main>
</body>
</html>
`))

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<main>
<h1>{{.Heading}}</h1>
{{if .Error}}<p>{{.Error}}</p>{{end}}
<form method="post" action="{{.Action}}">
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Sign in</button>
</form>
</main>
</body>
</html>
`))

type pageData struct {
	Title        string
	Heading      string
	Message      string
	LinkHref     string
	LinkText     string
	RefreshAfter string
}

type loginData struct {
	Title   string
	Heading string
	Action  string
	Error   string
}

func renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTmpl.Execute(w, data)
}

// Verifying renders the neutral waiting indicator shown while access
// verification has not completed. The page refreshes itself so a slow
// lookup eventually resolves without user action.
func Verifying(w http.ResponseWriter) {
	renderPage(w, http.StatusOK, pageData{
		Title:        "Verifying access",
		Heading:      "Verifying access",
		Message:      "Checking your credentials. This page will refresh automatically.",
		RefreshAfter: "2",
	})
}

// AccessDenied renders the explicit denial panel with a manual escape link.
// It never redirects: silent bounces on authorization failures are harder to
// diagnose than explicit messaging.
func AccessDenied(w http.ResponseWriter, escapeHref string) {
	renderPage(w, http.StatusForbidden, pageData{
		Title:    "Access denied",
		Heading:  "Access denied",
		Message:  "Your account does not have access to this area.",
		LinkHref: escapeHref,
		LinkText: "Back to the shop",
	})
}

// Landing renders a minimal landing page for an application surface.
func Landing(w http.ResponseWriter, title, message, linkHref, linkText string) {
	renderPage(w, http.StatusOK, pageData{
		Title:    title,
		Heading:  title,
		Message:  message,
		LinkHref: linkHref,
		LinkText: linkText,
	})
}

// Login renders a login form posting to action. errMsg is shown above the
// form when a previous attempt failed; empty hides it.
func Login(w http.ResponseWriter, status int, title, action, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = loginTmpl.Execute(w, loginData{Title: title, Heading: title, Action: action, Error: errMsg})
}
