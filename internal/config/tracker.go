package config

import (
	"fmt"
	"net/url"
	"time"
)

// TrackerConfig holds work-item tracker API client configuration.
type TrackerConfig struct {
	// BaseURL is the tracker API root (e.g., "https://dev.azure.com").
	BaseURL string
	// Organization is the tracker organization name.
	Organization string
	// Project is the tracker project name.
	Project string
	// PAT is the personal access token used for basic auth.
	PAT string
	// APIVersion is the REST API version query parameter.
	APIVersion string
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
	// RateLimit is the client-side request rate in requests per second.
	RateLimit float64
	// RateBurst is the client-side burst allowance.
	RateBurst int
	// RevisionPageSize is the $top value used when paging revisions.
	RevisionPageSize int
}

// LoadTrackerConfigFromEnv loads tracker client configuration from environment variables.
func LoadTrackerConfigFromEnv() TrackerConfig {
	return TrackerConfig{
		BaseURL:          GetEnv("TRACKER_BASE_URL", "https://dev.azure.com"),
		Organization:     GetEnv("TRACKER_ORGANIZATION", ""),
		Project:          GetEnv("TRACKER_PROJECT", ""),
		PAT:              GetEnv("TRACKER_PAT", ""),
		APIVersion:       GetEnv("TRACKER_API_VERSION", "7.0"),
		Timeout:          GetEnvDuration("TRACKER_TIMEOUT", 30*time.Second),
		RateLimit:        GetEnvFloat("TRACKER_RATE_LIMIT", 10),
		RateBurst:        GetEnvInt("TRACKER_RATE_BURST", 20),
		RevisionPageSize: GetEnvInt("TRACKER_REVISION_PAGE_SIZE", 200),
	}
}

// Validate validates tracker client configuration.
func (c TrackerConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid BaseURL: %w", err)
	}
	if c.Organization == "" {
		return fmt.Errorf("Organization is required")
	}
	if c.Project == "" {
		return fmt.Errorf("Project is required")
	}
	if c.PAT == "" {
		return fmt.Errorf("PAT is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("Timeout must be greater than 0")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RateLimit must be greater than 0")
	}
	if c.RateBurst <= 0 {
		return fmt.Errorf("RateBurst must be greater than 0")
	}
	if c.RevisionPageSize <= 0 || c.RevisionPageSize > 200 {
		return fmt.Errorf("RevisionPageSize must be between 1 and 200")
	}
	return nil
}
