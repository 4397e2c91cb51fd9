/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures server parameters by reading operating system environment variables,
including the running environment, port, CORS allowed origins, token secret,
MongoDB connection settings, S3 storage settings, and the real-time relay policy.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Relay policies supported by the real-time gateway.
const (
	// RelayTargeted delivers a relayed message only to the connection
	// bound to the named receiver id.
	RelayTargeted = "targeted"

	// RelayBroadcast delivers a relayed message to every open connection
	// except the sender's.
	RelayBroadcast = "broadcast"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string

	// Real-Time Settings
	RelayPolicy string

	// MongoDB Settings
	MongoURI      string
	MongoDatabase string

	// S3 Storage Settings
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for development and performs necessary type conversions
// and validation. It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Port
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	// AllowedOrigins
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// JWTSecret
	jwtSecret := os.Getenv("JWT_SECRET")
	if cfg.Environment == "development" {
		if jwtSecret == "" {
			jwtSecret = "your_default_insecure_secret_key_change_me"
		}
	} else {
		if jwtSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
	}
	cfg.JWTSecret = jwtSecret

	// --- Real-Time Settings ---
	relayPolicy := os.Getenv("RELAY_POLICY")
	if relayPolicy == "" {
		relayPolicy = RelayTargeted
	}
	if relayPolicy != RelayTargeted && relayPolicy != RelayBroadcast {
		return nil, fmt.Errorf("invalid RELAY_POLICY %q: must be %q or %q", relayPolicy, RelayTargeted, RelayBroadcast)
	}
	cfg.RelayPolicy = relayPolicy

	// --- MongoDB Settings ---
	cfg.MongoURI = os.Getenv("MONGO_URI")
	if cfg.MongoURI == "" {
		if cfg.Environment == "development" {
			cfg.MongoURI = "mongodb://localhost:27017"
		} else {
			return nil, fmt.Errorf("MONGO_URI environment variable is required in %s environment", cfg.Environment)
		}
	}

	cfg.MongoDatabase = os.Getenv("MONGO_DATABASE")
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "dmchat"
	}

	// --- S3 Storage Settings ---
	// S3 Bucket Name
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	if cfg.S3BucketName == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME environment variable is required for S3 storage connection")
	}

	// S3 Endpoint
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT environment variable is required for S3 storage connection")
	}

	// S3 Access Key ID
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	if cfg.S3AccessKeyID == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required for S3 authentication")
	}

	// S3 Secret Access Key
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	if cfg.S3SecretAccessKey == "" {
		return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required for S3 authentication")
	}

	// S3 Public Base URL, used to build stable avatar and attachment URLs.
	cfg.S3PublicBaseURL = os.Getenv("S3_PUBLIC_BASE_URL")
	if cfg.S3PublicBaseURL == "" {
		cfg.S3PublicBaseURL = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3BucketName
	}
	cfg.S3PublicBaseURL = strings.TrimRight(cfg.S3PublicBaseURL, "/")

	return cfg, nil
}
