package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where duetcast stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the public URL of this duetcast instance, used in feeds.
	InstanceURL string

	// AI configuration
	AIBaseURL string // DUETCAST_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey  string // DUETCAST_AI_API_KEY
	AIModel   string // DUETCAST_AI_MODEL (default: gpt-4o-mini)
	AITimeout time.Duration

	// Show tunables, configurable so deployments can change pacing
	// without a rebuild.
	ShowOpeningPersona string        // DUETCAST_SHOW_OPENING_PERSONA (default: HUMOR)
	ShowMaxTurns       int           // DUETCAST_SHOW_MAX_TURNS (default: 6)
	ShowSettleDelay    time.Duration // DUETCAST_SHOW_SETTLE_DELAY (default: 1.5s)
	ShowMaxRunning     int64         // DUETCAST_SHOW_MAX_RUNNING (default: 8)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if a generator backend is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIAPIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from DUETCAST_* environment variables.
func (p *Profile) FromEnv() {
	p.AIBaseURL = getEnvOrDefault("DUETCAST_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIAPIKey = os.Getenv("DUETCAST_AI_API_KEY")
	p.AIModel = getEnvOrDefault("DUETCAST_AI_MODEL", "gpt-4o-mini")
	if d, err := time.ParseDuration(getEnvOrDefault("DUETCAST_AI_TIMEOUT", "30s")); err == nil {
		p.AITimeout = d
	}

	p.ShowOpeningPersona = getEnvOrDefault("DUETCAST_SHOW_OPENING_PERSONA", "HUMOR")
	if n, err := strconv.Atoi(getEnvOrDefault("DUETCAST_SHOW_MAX_TURNS", "6")); err == nil && n > 0 {
		p.ShowMaxTurns = n
	}
	if d, err := time.ParseDuration(getEnvOrDefault("DUETCAST_SHOW_SETTLE_DELAY", "1500ms")); err == nil && d >= 0 {
		p.ShowSettleDelay = d
	}
	if n, err := strconv.ParseInt(getEnvOrDefault("DUETCAST_SHOW_MAX_RUNNING", "8"), 10, 64); err == nil && n > 0 {
		p.ShowMaxRunning = n
	}
	p.InstanceURL = os.Getenv("DUETCAST_INSTANCE_URL")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q, expected sqlite or postgres", p.Driver)
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/duetcast"
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("duetcast_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if p.ShowMaxTurns <= 0 {
		p.ShowMaxTurns = 6
	}
	if p.ShowSettleDelay < 0 {
		p.ShowSettleDelay = 0
	}
	if p.ShowMaxRunning <= 0 {
		p.ShowMaxRunning = 8
	}

	return nil
}
