package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Input
	GraphPath  string
	QueriesDir string

	// Report definitions
	ReportsDir string

	// Output
	OutputDir string

	// Remote SPARQL endpoint (used by endpoint-sourced reports)
	EndpointURL     string
	EndpointTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		GraphPath:  getEnv("GRAPH_PATH", "./data/graph.ttl"),
		QueriesDir: getEnv("QUERIES_DIR", "./queries"),
		ReportsDir: getEnv("REPORTS_DIR", "./configs/reports"),
		OutputDir:  getEnv("OUTPUT_DIR", "./output"),

		EndpointURL:     getEnv("SPARQL_ENDPOINT", "http://localhost:7200/repositories/spendcast"),
		EndpointTimeout: getEnvDuration("SPARQL_ENDPOINT_TIMEOUT", 30*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.GraphPath) == "" {
		errors = append(errors, "graph path cannot be empty")
	}
	if strings.TrimSpace(c.QueriesDir) == "" {
		errors = append(errors, "queries directory cannot be empty")
	}
	if strings.TrimSpace(c.ReportsDir) == "" {
		errors = append(errors, "reports directory cannot be empty")
	} else if _, err := os.Stat(c.ReportsDir); os.IsNotExist(err) {
		errors = append(errors, fmt.Sprintf("reports directory does not exist: %s", c.ReportsDir))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, "output directory cannot be empty")
	}

	if c.EndpointURL != "" {
		if parsedURL, err := url.Parse(c.EndpointURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid SPARQL endpoint URL '%s': %v", c.EndpointURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid SPARQL endpoint scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.EndpointTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid endpoint timeout %v: must be at least 1 second", c.EndpointTimeout))
	} else if c.EndpointTimeout > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid endpoint timeout %v: must be at most 1 hour", c.EndpointTimeout))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
