package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port     string
	APIToken string

	// Database
	SQLiteDBPath string

	// Receipt file storage
	DataDir string

	// AMQP (optional; empty URL -> in-process scan dispatch)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Inbox backend: gmail, memory or none
	MailBackend          string
	GmailOAuthClientFile string
	GmailOAuthClientJSON string
	GmailTokenFile       string
	GmailTokenJSON       string

	// Analyzer backend: anthropic, memory or none
	VisionBackend   string
	AnthropicAPIKey string
	AnthropicModel  string

	// Scanning
	ScanBatchSize int
	ScanSchedule  string
	ScanProjectID string
}

func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		APIToken: getEnv("API_TOKEN", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/cantiere.db"),
		DataDir:      getEnv("DATA_DIR", "./data"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "cantiere"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "scan_receipts"),

		MailBackend:          getEnv("MAIL_BACKEND", "memory"),
		GmailOAuthClientFile: getEnv("GMAIL_OAUTH_CLIENT_FILE", ""),
		GmailOAuthClientJSON: getEnv("GMAIL_OAUTH_CLIENT_JSON", ""),
		GmailTokenFile:       getEnv("GMAIL_TOKEN_FILE", ""),
		GmailTokenJSON:       getEnv("GMAIL_TOKEN_JSON", ""),

		VisionBackend:   getEnv("VISION_BACKEND", "memory"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", ""),

		ScanBatchSize: getEnvInt("SCAN_BATCH_SIZE", 25),
		ScanSchedule:  getEnv("SCAN_SCHEDULE", ""),
		ScanProjectID: getEnv("SCAN_PROJECT_ID", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate database path
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate receipt file directory
	if c.DataDir == "" {
		errors = append(errors, "data directory cannot be empty")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate mail backend selection
	switch c.MailBackend {
	case "memory", "none":
	case "gmail":
		hasClientFile := c.GmailOAuthClientFile != ""
		hasClientJSON := c.GmailOAuthClientJSON != ""
		if !hasClientFile && !hasClientJSON {
			errors = append(errors, "either GMAIL_OAUTH_CLIENT_FILE or GMAIL_OAUTH_CLIENT_JSON must be provided for the gmail backend")
		}
		hasTokenFile := c.GmailTokenFile != ""
		hasTokenJSON := c.GmailTokenJSON != ""
		if !hasTokenFile && !hasTokenJSON {
			errors = append(errors, "either GMAIL_TOKEN_FILE or GMAIL_TOKEN_JSON must be provided for the gmail backend")
		}
		if hasClientFile {
			if _, err := os.Stat(c.GmailOAuthClientFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Gmail OAuth client file does not exist: %s", c.GmailOAuthClientFile))
			}
		}
		if hasTokenFile {
			if _, err := os.Stat(c.GmailTokenFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Gmail token file does not exist: %s", c.GmailTokenFile))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid mail backend '%s': must be one of [gmail memory none]", c.MailBackend))
	}

	// Validate vision backend selection
	switch c.VisionBackend {
	case "memory", "none":
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			errors = append(errors, "ANTHROPIC_API_KEY must be provided for the anthropic backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid vision backend '%s': must be one of [anthropic memory none]", c.VisionBackend))
	}

	// Validate scan configuration
	if c.ScanBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid scan batch size %d: must be at least 1", c.ScanBatchSize))
	} else if c.ScanBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid scan batch size %d: must be at most 1000", c.ScanBatchSize))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
