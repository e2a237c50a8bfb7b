// Package handler exposes identity over HTTP: the per-application login
// forms, credential sign-in, sign-out, and registration.
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-gateway/internal/audit"
	"storefront-gateway/internal/identity/service"
	"storefront-gateway/internal/web"
)

// IdentityService is the identity surface needed by the HTTP handlers.
type IdentityService interface {
	Register(ctx context.Context, email, password, name string) (string, error)
	SignIn(ctx context.Context, email, password string) (*service.SignInResult, error)
	SignOut(ctx context.Context, token string) error
}

// LoginConfig describes one application's login surface.
type LoginConfig struct {
	App       string // audit app label
	Title     string // login page heading
	LoginPath string // where the form lives and posts back to
	HomePath  string // redirect target after sign-in when no next param is given
}

// Handler serves the identity HTTP endpoints for one application.
type Handler struct {
	identity   IdentityService
	recorder   audit.Recorder // may be nil
	cfg        LoginConfig
	cookieName string
	secure     bool
	logger     *zap.Logger
}

// NewHandler returns an identity HTTP handler for one application's login
// surface. secure controls the session cookie's Secure flag. logger may be nil.
func NewHandler(identity IdentityService, recorder audit.Recorder, cfg LoginConfig, cookieName string, secure bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		identity:   identity,
		recorder:   recorder,
		cfg:        cfg,
		cookieName: cookieName,
		secure:     secure,
		logger:     logger,
	}
}

// LoginForm handles GET on the login path: renders the credential form.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	web.Login(w, http.StatusOK, h.cfg.Title, h.loginAction(r), "")
}

// SignIn handles POST on the login path: authenticates the submitted
// credentials, sets the session cookie, and redirects to the next page.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		web.Login(w, http.StatusBadRequest, h.cfg.Title, h.loginAction(r), "Invalid form submission.")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	result, err := h.identity.SignIn(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.record(r, audit.Event{
				App:      h.cfg.App,
				Path:     r.URL.Path,
				Action:   audit.ActionSignIn,
				Decision: audit.DecisionDeniedUnauthenticated,
				Metadata: email,
			})
			web.Login(w, http.StatusUnauthorized, h.cfg.Title, h.loginAction(r), "Email or password is incorrect.")
			return
		}
		h.logger.Error("sign-in failed", zap.Error(err))
		web.Login(w, http.StatusInternalServerError, h.cfg.Title, h.loginAction(r), "Something went wrong. Try again.")
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, result.ExpiresAt))
	h.record(r, audit.Event{
		App:      h.cfg.App,
		Path:     r.URL.Path,
		UserID:   result.Principal.ID,
		Action:   audit.ActionSignIn,
		Decision: audit.DecisionGranted,
	})
	http.Redirect(w, r, h.nextTarget(r), http.StatusSeeOther)
}

// SignOut handles POST /logout: revokes the session, clears the cookie, and
// redirects to the application home. Signing out without a session is a no-op.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookieName); err == nil && c.Value != "" {
		if err := h.identity.SignOut(r.Context(), c.Value); err != nil {
			h.logger.Warn("sign-out failed", zap.Error(err))
		}
	}
	http.SetCookie(w, h.expiredCookie())
	h.record(r, audit.Event{
		App:      h.cfg.App,
		Path:     r.URL.Path,
		Action:   audit.ActionSignOut,
		Decision: audit.DecisionGranted,
	})
	http.Redirect(w, r, h.cfg.HomePath, http.StatusSeeOther)
}

// Register handles POST /register on the customer app: creates an account
// from the submitted form and sends the new user to the login form.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		web.Login(w, http.StatusBadRequest, "Create account", r.URL.Path, "Invalid form submission.")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	name := strings.TrimSpace(r.PostFormValue("name"))

	if _, err := h.identity.Register(r.Context(), email, password, name); err != nil {
		status := http.StatusBadRequest
		msg := err.Error()
		if errors.Is(err, service.ErrEmailAlreadyRegistered) {
			status = http.StatusConflict
			msg = "That email is already registered."
		}
		web.Login(w, status, "Create account", r.URL.Path, msg)
		return
	}
	http.Redirect(w, r, h.cfg.LoginPath, http.StatusSeeOther)
}

// loginAction preserves the next param across a failed attempt so a retry
// still lands where the user was headed.
func (h *Handler) loginAction(r *http.Request) string {
	next := r.URL.Query().Get("next")
	if next == "" {
		return h.cfg.LoginPath
	}
	return h.cfg.LoginPath + "?next=" + url.QueryEscape(next)
}

// nextTarget returns the post-sign-in redirect. Only relative paths are
// honoured; anything else falls back to the application home.
func (h *Handler) nextTarget(r *http.Request) string {
	next := r.URL.Query().Get("next")
	if next == "" {
		next = r.PostFormValue("next")
	}
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return h.cfg.HomePath
}

func (h *Handler) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) record(r *http.Request, e audit.Event) {
	if h.recorder == nil {
		return
	}
	h.recorder.Record(r.Context(), e)
}
