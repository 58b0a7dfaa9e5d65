// env.go - Environment variable configuration and validation for bunrui-go
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		// Classifier Core Configuration
		{"classifier.locale", "BUNRUI_LOCALE", validateEnvLocale},
		{"classifier.topk", "BUNRUI_TOPK", validateEnvTopK},
		{"classifier.threads", "BUNRUI_THREADS", validateEnvThreads},
		{"classifier.debug", "BUNRUI_DEBUG", validateEnvBool},
		{"classifier.usexnnpack", "BUNRUI_USEXNNPACK", validateEnvBool},

		// Model Paths
		{"classifier.modelpath", "BUNRUI_MODELPATH", validateEnvPath},
		{"classifier.labelpath", "BUNRUI_LABELPATH", validateEnvPath},
		{"classifier.localepath", "BUNRUI_LOCALEPATH", validateEnvPath},

		// Upload Configuration
		{"upload.maxsize", "BUNRUI_UPLOAD_MAXSIZE", validateEnvSize},
		{"upload.path", "BUNRUI_UPLOAD_PATH", nil},

		// Database Configuration
		{"output.sqlite.path", "BUNRUI_SQLITE_PATH", nil},
		{"output.mysql.password", "BUNRUI_MYSQL_PASSWORD", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		// Bind the environment variable to the config key
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		// Validate the value if it's set and validation function is provided
		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	_, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

// localePattern matches locale patterns like "en" or "en-us"
var localePattern = regexp.MustCompile(`(?i)^[a-z]{2}(-[a-z]{2})?$`)

func validateEnvLocale(value string) error {
	if len(value) < 2 || len(value) > 10 {
		return fmt.Errorf("locale must be 2-10 characters (got %d), expected pattern: 'en' or 'en-us', actual: '%s'", len(value), value)
	}
	// Check pattern for valid locale format
	if !localePattern.MatchString(value) {
		return fmt.Errorf("locale must match pattern 'xx' or 'xx-xx' (e.g., 'ja' or 'en-us'), got: '%s'", value)
	}
	return nil
}

func validateEnvTopK(value string) error {
	topK, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid topk: %w", err)
	}
	if topK < 1 || topK > 100 {
		return fmt.Errorf("topk must be between 1 and 100, got %d", topK)
	}
	return nil
}

func validateEnvThreads(value string) error {
	threads, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid threads: %w", err)
	}
	if threads < 0 {
		return fmt.Errorf("threads must be non-negative, got %d", threads)
	}
	return nil
}

func validateEnvSize(value string) error {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("size must be positive, got %d", size)
	}
	return nil
}

func validateEnvPath(value string) error {
	// Clean the path first to normalize it
	cleanedPath := filepath.Clean(value)

	// Require absolute paths for security
	if !filepath.IsAbs(cleanedPath) {
		return fmt.Errorf("path must be absolute, got relative path: %s", cleanedPath)
	}

	// Check for path traversal attempts after cleaning
	// Split path and check each component
	pathParts := strings.Split(cleanedPath, string(os.PathSeparator))
	for _, part := range pathParts {
		if part == ".." {
			return fmt.Errorf("path traversal detected in cleaned path: %s", cleanedPath)
		}
	}

	// Optionally check if file exists (warn but don't fail)
	if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
		// Return a warning as part of the error that can be logged
		// but doesn't prevent the app from starting
		return fmt.Errorf("warning: file does not exist: %s", cleanedPath)
	}

	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	// Set up key replacer for nested config keys
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific environment variables with validation
	// Return any errors to the caller for centralized handling
	return bindEnvVars()
}
