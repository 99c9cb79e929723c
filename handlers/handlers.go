package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dchest/captcha"
	"github.com/gorilla/csrf"

	"movietrack/auth"
	"movietrack/config"
	"movietrack/db"
	"movietrack/i18n"
	"movietrack/models"
	"movietrack/omdb"
	"movietrack/store"
	"movietrack/token"
)

// templatesDir is relative to the working directory; tests point it at the
// repository copy.
var templatesDir = "templates"

// ResetMailer delivers the password-reset email.
type ResetMailer interface {
	SendPasswordReset(to, resetURL string) error
}

// MovieSearcher is the external movie-metadata gateway.
type MovieSearcher interface {
	Search(query string) ([]omdb.SearchResult, error)
	Get(title, year string) (omdb.Movie, error)
}

type Handlers struct {
	cfg      *config.Config
	users    *store.UserStore
	movies   *store.MovieStore
	sessions *auth.Sessions
	tokens   *token.Manager
	mailer   ResetMailer
	search   MovieSearcher

	// verifyCaptcha is swapped out in tests
	verifyCaptcha func(id, solution string) bool

	loginLimiter *rateLimiter
	resetLimiter *rateLimiter
}

func New(cfg *config.Config, users *store.UserStore, movies *store.MovieStore,
	sessions *auth.Sessions, tokens *token.Manager, mailer ResetMailer, search MovieSearcher) *Handlers {
	return &Handlers{
		cfg:           cfg,
		users:         users,
		movies:        movies,
		sessions:      sessions,
		tokens:        tokens,
		mailer:        mailer,
		search:        search,
		verifyCaptcha: captcha.VerifyString,
		loginLimiter:  newRateLimiter(),
		resetLimiter:  newRateLimiter(),
	}
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/{$}", h.Index)
	mux.HandleFunc("/login", h.Login)
	mux.HandleFunc("/logout", h.Logout)
	mux.HandleFunc("/register", h.RegisterUser)
	mux.HandleFunc("/movies", h.Movies)
	mux.HandleFunc("/movies/new", h.NewMovie)
	mux.HandleFunc("/movies/delete/{id}", h.DeleteMovie)
	mux.HandleFunc("/movies/search", h.SearchMovies)
	mux.HandleFunc("/movies/search/add/", h.AddFromSearch)
	mux.HandleFunc("/reset_password", h.ResetRequest)
	mux.HandleFunc("/reset_password/{token}", h.ResetToken)

	mux.Handle("/captcha/", captcha.Server(captcha.StdWidth, captcha.StdHeight))
}

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	if h.sessions.CurrentUserID(r) != 0 {
		http.Redirect(w, r, "/movies", http.StatusSeeOther)
		return
	}
	h.render(w, r, "index.html", nil)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if h.sessions.CurrentUserID(r) != 0 {
		http.Redirect(w, r, "/movies", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		ip := getClientIP(r)
		if !h.loginLimiter.Allow(ip) {
			h.sessions.AddFlash(w, r, "warning", h.t(r, "TooManyAttempts"))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		remember := r.FormValue("remember") == "on"

		user, err := h.users.FindByEmail(email)

		// Always run one bcrypt comparison so an unknown email costs the
		// same as a wrong password
		targetHash := user.PasswordHash
		if err != nil {
			targetHash = db.DummyHash
		}
		match := db.CheckPasswordHash(password, targetHash)

		if err != nil || !match {
			h.loginLimiter.RecordFailure(ip)
			h.sessions.AddFlash(w, r, "info", h.t(r, "LoginFailed"))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		h.loginLimiter.Reset(ip)
		h.sessions.SignIn(w, r, user.ID, remember)

		// Only follow a relative next target, never an absolute URL
		if next := r.URL.Query().Get("next"); strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
			http.Redirect(w, r, next, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/movies", http.StatusSeeOther)
		return
	}

	h.render(w, r, "login.html", nil)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	if h.sessions.CurrentUserID(r) != 0 {
		http.Redirect(w, r, "/movies", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		username := strings.TrimSpace(r.FormValue("username"))
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")

		if !h.verifyCaptcha(r.FormValue("captcha_id"), r.FormValue("captcha_solution")) {
			h.flashAndReturn(w, r, "warning", "CaptchaFailed", "/register")
			return
		}
		if len(username) < 5 || len(username) > 20 {
			h.flashAndReturn(w, r, "warning", "InvalidUsername", "/register")
			return
		}
		if _, err := mail.ParseAddress(email); err != nil {
			h.flashAndReturn(w, r, "warning", "InvalidEmail", "/register")
			return
		}
		if err := auth.ValidatePassword(password); err != nil {
			h.flashAndReturn(w, r, "warning", "InvalidPassword", "/register")
			return
		}
		if password != confirm {
			h.flashAndReturn(w, r, "warning", "PasswordMismatch", "/register")
			return
		}

		hashedPassword, err := db.HashPassword(password)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if _, err := h.users.Create(username, email, hashedPassword); err != nil {
			if errors.Is(err, store.ErrConflict) {
				h.flashAndReturn(w, r, "warning", "AccountConflict", "/register")
				return
			}
			log.Printf("Error creating user: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		h.flashAndReturn(w, r, "success", "AccountCreated", "/login")
		return
	}

	h.render(w, r, "register.html", map[string]any{"CaptchaID": captcha.New()})
}

func (h *Handlers) ResetRequest(w http.ResponseWriter, r *http.Request) {
	if h.sessions.CurrentUserID(r) != 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		ip := getClientIP(r)
		if !h.resetLimiter.Allow(ip) {
			h.flashAndReturn(w, r, "warning", "TooManyAttempts", "/reset_password")
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		user, err := h.users.FindByEmail(email)
		if err != nil {
			h.resetLimiter.RecordFailure(ip)
			h.flashAndReturn(w, r, "warning", "UnknownEmail", "/reset_password")
			return
		}

		tok, err := h.tokens.Issue(user, token.DefaultTTL)
		if err != nil {
			log.Printf("Error issuing reset token: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resetURL := h.cfg.BaseURL + "/reset_password/" + tok
		if err := h.mailer.SendPasswordReset(user.Email, resetURL); err != nil {
			log.Printf("Error sending reset email: %v", err)
			h.flashAndReturn(w, r, "danger", "ResetEmailFailed", "/reset_password")
			return
		}

		h.flashAndReturn(w, r, "info", "ResetEmailSent", "/login")
		return
	}

	h.render(w, r, "reset-request.html", nil)
}

func (h *Handlers) ResetToken(w http.ResponseWriter, r *http.Request) {
	if h.sessions.CurrentUserID(r) != 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	tok := r.PathValue("token")
	user, ok := h.resolveResetUser(w, r, tok)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")
		selfURL := "/reset_password/" + tok

		if err := auth.ValidatePassword(password); err != nil {
			h.flashAndReturn(w, r, "warning", "InvalidPassword", selfURL)
			return
		}
		if password != confirm {
			h.flashAndReturn(w, r, "warning", "PasswordMismatch", selfURL)
			return
		}

		hashedPassword, err := db.HashPassword(password)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if err := h.users.UpdatePasswordHash(user.ID, hashedPassword); err != nil {
			log.Printf("Error updating password: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		h.flashAndReturn(w, r, "success", "PasswordUpdated", "/login")
		return
	}

	h.render(w, r, "reset-token.html", map[string]any{"Token": tok})
}

// resolveResetUser turns a reset token into the user it authorizes a
// password change for. Every failure mode collapses into the same notice:
// the caller learns only that the token is invalid.
func (h *Handlers) resolveResetUser(w http.ResponseWriter, r *http.Request, tok string) (models.User, bool) {
	userID, fingerprint, err := h.tokens.Verify(tok)
	if err != nil {
		h.flashAndReturn(w, r, "warning", "InvalidResetToken", "/reset_password")
		return models.User{}, false
	}
	user, err := h.users.FindByID(userID)
	if err != nil {
		h.flashAndReturn(w, r, "warning", "InvalidResetToken", "/reset_password")
		return models.User{}, false
	}
	// A reset replaces the hash, so a token issued against the old hash is
	// dead after first use
	if fingerprint != token.Fingerprint(user.PasswordHash) {
		h.flashAndReturn(w, r, "warning", "InvalidResetToken", "/reset_password")
		return models.User{}, false
	}
	return user, true
}

// requireUser redirects anonymous requests to the login page and resolves
// the session to its user.
func (h *Handlers) requireUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id := h.sessions.CurrentUserID(r)
	if id == 0 {
		http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusSeeOther)
		return models.User{}, false
	}
	user, err := h.users.FindByID(id)
	if err != nil {
		// Stale session for a user that no longer exists
		h.sessions.SignOut(w, r)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return models.User{}, false
	}
	return user, true
}

func (h *Handlers) t(r *http.Request, key string) string {
	return i18n.T(i18n.DetectLanguage(r), key)
}

func (h *Handlers) flashAndReturn(w http.ResponseWriter, r *http.Request, category, key, location string) {
	h.sessions.AddFlash(w, r, category, h.t(r, key))
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	lang := i18n.DetectLanguage(r)

	funcMap := template.FuncMap{
		"T": func(key string) string {
			return i18n.T(lang, key)
		},
	}

	tmpl, err := template.New(name).Funcs(funcMap).ParseFiles(
		templatesDir+"/layout.html", templatesDir+"/"+name)
	if err != nil {
		log.Printf("Error parsing template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["AppName"]; !exists {
		data["AppName"] = h.cfg.AppName
	}
	data["Lang"] = lang
	data["csrfField"] = csrf.TemplateField(r)
	data["Flashes"] = h.sessions.Flashes(w, r)
	data["LoggedIn"] = h.sessions.CurrentUserID(r) != 0

	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}
