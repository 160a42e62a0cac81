package entity

import (
	"fmt"
	"net/url"
)

// maxURLLength caps configured URLs.
const maxURLLength = 2048

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
// field names the configuration key in the returned ValidationError.
func ValidateURL(field, rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: field, Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("malformed URL: %v", err)}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: field, Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: field, Message: "URL must have a valid host"}
	}

	return nil
}
