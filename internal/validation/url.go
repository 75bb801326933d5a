package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// dangerousURLChars are rejected anywhere in a URL or asset locator.
var dangerousURLChars = []string{";", "|", "`", "$", "(", ")", "<", ">", "\"", "'", "\\", "\n", "\r", "\t"}

// ValidateURL validates absolute http/https URLs such as a CDN assets source
// or a fetch base URL.
func ValidateURL(rawURL string) error {
	// Parse and validate URL structure
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	// Only allow http/https schemes to prevent protocol handlers
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}

	if err := checkDangerous(rawURL); err != nil {
		return err
	}

	// Validate hostname isn't empty
	if parsed.Host == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}

	return nil
}

// ValidateAssetLocator validates a locator built for an icon asset. Relative
// locators ("assets/outline/home.svg") and absolute http/https URLs are
// accepted; other schemes, dangerous characters and ".." segments are not.
func ValidateAssetLocator(locator string) error {
	if locator == "" {
		return fmt.Errorf("locator cannot be empty")
	}

	if err := checkDangerous(locator); err != nil {
		return err
	}

	parsed, err := url.Parse(locator)
	if err != nil {
		return fmt.Errorf("invalid locator: %w", err)
	}

	switch parsed.Scheme {
	case "":
		if strings.HasPrefix(locator, "//") {
			return fmt.Errorf("scheme-relative locators are not allowed")
		}
	case "http", "https":
		if parsed.Host == "" {
			return fmt.Errorf("URL must have a valid hostname")
		}
	default:
		return fmt.Errorf("invalid URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}

	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment == ".." {
			return fmt.Errorf("locator contains path traversal: %s", locator)
		}
	}

	return nil
}

// URLPolicy is the sanitize-or-reject validator used by the fetch
// coordinator.
type URLPolicy struct{}

// Sanitize returns the locator unchanged when it is safe to dereference.
func (URLPolicy) Sanitize(locator string) (string, error) {
	if err := ValidateAssetLocator(locator); err != nil {
		return "", err
	}
	return locator, nil
}

func checkDangerous(raw string) error {
	for _, char := range dangerousURLChars {
		if strings.Contains(raw, char) {
			return fmt.Errorf("URL contains dangerous character: %q", char)
		}
	}

	// Reject URLs with spaces (could indicate injection attempts)
	if strings.Contains(raw, " ") {
		return fmt.Errorf("URL contains spaces")
	}
	return nil
}
