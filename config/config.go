package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName       string `json:"app_name"`
	ListenIP      string `json:"listen_ip"`
	ListenPort    int    `json:"listen_port"`
	BaseURL       string `json:"base_url"`
	DatabasePath  string `json:"database_path"`
	SessionKey    string `json:"session_key"`
	ResetSecret   string `json:"reset_secret"`
	SecureCookies bool   `json:"secure_cookies"`
	OMDbAPIKey    string `json:"omdb_api_key"`
	SMTPHost      string `json:"smtp_host"`
	SMTPPort      int    `json:"smtp_port"`
	SMTPUsername  string `json:"smtp_username"`
	SMTPPassword  string `json:"smtp_password"`
	MailFrom      string `json:"mail_from"`
}

// Load reads the JSON config file, then applies overrides from the
// environment (a local .env file is honoured if present). Secrets are
// expected to come from the environment in production.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)

	// If no key is provided or it's the placeholder, generate a secure random one
	if cfg.SessionKey == "" || cfg.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		log.Println("WARNING: No session key configured. Generating a random key. Sessions will be invalidated on restart.")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return nil, err
		}
		cfg.SessionKey = hex.EncodeToString(randomKey)
	}

	// Reset tokens fall back to the session key when no dedicated secret is set
	if cfg.ResetSecret == "" {
		cfg.ResetSecret = cfg.SessionKey
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "./movietrack.db"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.ListenPort)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.SessionKey, "MOVIETRACK_SESSION_KEY")
	setString(&cfg.ResetSecret, "MOVIETRACK_RESET_SECRET")
	setString(&cfg.DatabasePath, "MOVIETRACK_DATABASE_PATH")
	setString(&cfg.BaseURL, "MOVIETRACK_BASE_URL")
	setString(&cfg.OMDbAPIKey, "OMDB_API_KEY")
	setString(&cfg.SMTPHost, "SMTP_HOST")
	setString(&cfg.SMTPUsername, "SMTP_USERNAME")
	setString(&cfg.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.MailFrom, "MAIL_FROM")

	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SMTPPort = port
		}
	}
}
