package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/csrf"

	"movietrack/auth"
	"movietrack/config"
	"movietrack/db"
	"movietrack/handlers"
	"movietrack/i18n"
	"movietrack/mail"
	"movietrack/omdb"
	"movietrack/store"
	"movietrack/token"
)

func main() {
	cfg, err := config.Load("config.json")
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if err := i18n.LoadTranslations("i18n"); err != nil {
		log.Fatalf("Error loading translations: %v", err)
	}

	conn, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	users := store.NewUserStore(conn)
	movies := store.NewMovieStore(conn)
	sessions := auth.NewSessions(cfg.SessionKey, cfg.SecureCookies)
	tokens := token.NewManager(cfg.ResetSecret)
	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	search := omdb.NewClient(cfg.OMDbAPIKey)

	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	h := handlers.New(cfg, users, movies, sessions, tokens, mailer, search)
	h.RegisterRoutes(mux)

	// CSRF protection over every form post
	csrfMiddleware := csrf.Protect(
		[]byte(cfg.SessionKey),
		csrf.Secure(cfg.SecureCookies),
		csrf.Path("/"),
	)

	addr := fmt.Sprintf("%s:%d", cfg.ListenIP, cfg.ListenPort)
	log.Printf("Server starting on %s (%s)", addr, cfg.AppName)

	if err := http.ListenAndServe(addr, handlers.SecurityHeadersMiddleware(csrfMiddleware(mux))); err != nil {
		log.Fatal(err)
	}
}
