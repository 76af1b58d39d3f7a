package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Backend selection
	DataBackend string

	// SQLite mirror
	SQLiteDBPath string

	// AMQP mutation fan-out
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleGoalsSheet         string
	GoogleTransactionsSheet  string
	GoogleCategoriesSheet    string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Static identity for headless runs; empty UserID means signed out
	UserID    string
	UserName  string
	UserEmail string

	// Agent
	RefetchInterval time.Duration

	// Mirror worker
	MirrorBatchSize int
}

func Load() *Config {
	cfg := &Config{
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/pocka.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "pocka"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_mutations"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleGoalsSheet:         getEnv("GOOGLE_GOALS_SHEET_NAME", "Goals"),
		GoogleTransactionsSheet:  getEnv("GOOGLE_TRANSACTIONS_SHEET_NAME", "Transactions"),
		GoogleCategoriesSheet:    getEnv("GOOGLE_CATEGORIES_SHEET_NAME", "Categories"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		UserID:    getEnv("POCKA_USER_ID", ""),
		UserName:  getEnv("POCKA_USER_NAME", ""),
		UserEmail: getEnv("POCKA_USER_EMAIL", ""),

		RefetchInterval: getEnvDuration("REFETCH_INTERVAL", 5*time.Minute),

		MirrorBatchSize: getEnvInt("MIRROR_BATCH_SIZE", 10),
	}

	return cfg
}

// Validate checks the configuration and returns one error naming every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

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

	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleGoalsSheet == "" || c.GoogleTransactionsSheet == "" || c.GoogleCategoriesSheet == "" {
			errors = append(errors, "Google sheet names cannot be empty when using sheets backend")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets backend")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.UserID == "" && (c.UserName != "" || c.UserEmail != "") {
		errors = append(errors, "POCKA_USER_NAME/POCKA_USER_EMAIL are set but POCKA_USER_ID is empty")
	}
	if c.UserEmail != "" && !strings.Contains(c.UserEmail, "@") {
		errors = append(errors, fmt.Sprintf("invalid user email '%s'", c.UserEmail))
	}

	if c.RefetchInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refetch interval %v: must be at least 1 second", c.RefetchInterval))
	} else if c.RefetchInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid refetch interval %v: must be at most 24 hours", c.RefetchInterval))
	}

	if c.MirrorBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid mirror batch size %d: must be at least 1", c.MirrorBatchSize))
	} else if c.MirrorBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid mirror batch size %d: must be at most 1000", c.MirrorBatchSize))
	}

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
