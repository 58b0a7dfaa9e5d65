// conf/validate.go

package conf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	// Validate Classifier settings
	if err := validateClassifierSettings(&settings.Classifier); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate Upload settings
	if err := validateUploadSettings(&settings.Upload); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate WebServer settings
	if err := validateWebServerSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate Security settings
	if err := validateSecuritySettings(&settings.Security); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// If there are any errors, return the ValidationError
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateClassifierSettings validates the classifier-specific settings
func validateClassifierSettings(settings *ClassifierConfig) error {
	var errs []string

	// Model path is required, the application cannot start without a model
	if settings.ModelPath == "" {
		errs = append(errs, "Classifier model path must not be empty")
	}

	// Label path is required, predictions without labels are useless
	if settings.LabelPath == "" {
		errs = append(errs, "Classifier label path must not be empty")
	}

	// Check if top K is within valid range
	if settings.TopK < 1 || settings.TopK > 100 {
		errs = append(errs, "Classifier topk must be between 1 and 100")
	}

	// Check if threads is non-negative
	if settings.Threads < 0 {
		errs = append(errs, "Classifier threads must be at least 0")
	}

	// Locale must be set so display labels resolve consistently
	if settings.Locale == "" {
		errs = append(errs, "Classifier locale must not be empty")
	}

	if settings.ModelName == "" || settings.ModelVersion == "" {
		errs = append(errs, "Classifier model name and version must not be empty")
	}

	// If there are any errors, return them as a single error
	if len(errs) > 0 {
		return fmt.Errorf("Classifier settings errors: %v", errs)
	}

	return nil
}

// validateUploadSettings validates and normalizes the upload settings
func validateUploadSettings(settings *UploadConfig) error {
	var errs []string

	if settings.Path == "" {
		errs = append(errs, "Upload path must not be empty")
	}

	if settings.MaxSize <= 0 {
		errs = append(errs, "Upload maxsize must be positive")
	}

	if len(settings.AllowedExtensions) == 0 {
		errs = append(errs, "Upload allowedextensions must not be empty")
	} else {
		// Normalize extensions to lowercase with a leading dot so later
		// comparisons are exact
		normalized := make([]string, 0, len(settings.AllowedExtensions))
		for _, ext := range settings.AllowedExtensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			normalized = append(normalized, ext)
		}
		if len(normalized) == 0 {
			errs = append(errs, "Upload allowedextensions contains no usable entries")
		}
		settings.AllowedExtensions = normalized
	}

	if len(errs) > 0 {
		return fmt.Errorf("Upload settings errors: %v", errs)
	}

	return nil
}

// validateWebServerSettings validates the WebServer-specific settings
func validateWebServerSettings(settings *Settings) error {
	if settings.WebServer.Enabled {
		// Check if port is provided when enabled
		if settings.WebServer.Port == "" {
			return errors.New("WebServer port is required when enabled")
		}

		// Port must be numeric and in the valid range
		port, err := strconv.Atoi(settings.WebServer.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("WebServer port must be a number between 1 and 65535, got %q", settings.WebServer.Port)
		}
	}

	return nil
}

// validateSecuritySettings validates the security-specific settings
func validateSecuritySettings(settings *Security) error {
	// AutoTLS needs a hostname for the certificate request
	if settings.AutoTLS && settings.Host == "" {
		return fmt.Errorf("security.host must be set when autotls is enabled")
	}

	return nil
}
