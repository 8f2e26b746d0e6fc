package config

import (
	"os"
	"path/filepath"
	"time"
)

// Client captures everything the SDK needs to reach one backend deployment.
type Client struct {
	BaseURL         string
	Timeout         time.Duration
	TokenFile       string
	TokenPassphrase string
}

// DefaultBaseURL points at the hosted AgroFarm backend. Point it at a local
// stub (cmd/agrofarm-stub) with AGROFARM_BASE_URL during development.
const DefaultBaseURL = "https://agrofarm-vd8i.onrender.com/api/"

// DefaultTimeout bounds every request the gateway issues. There is no retry
// policy on top of it; a timed-out call surfaces to the user immediately.
const DefaultTimeout = 10 * time.Second

// FromEnv builds a Client config from environment variables so main stays lean.
func FromEnv() Client {
	base := os.Getenv("AGROFARM_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}

	timeout := DefaultTimeout
	if raw := os.Getenv("AGROFARM_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	tokenFile := os.Getenv("AGROFARM_TOKEN_FILE")
	if tokenFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		tokenFile = filepath.Join(home, ".agrofarm", "token")
	}

	passphrase := os.Getenv("AGROFARM_TOKEN_PASSPHRASE")
	if passphrase == "" {
		// Use a default for development - real devices must override this
		passphrase = "dev-passphrase-change-on-device"
	}

	return Client{
		BaseURL:         base,
		Timeout:         timeout,
		TokenFile:       tokenFile,
		TokenPassphrase: passphrase,
	}
}
