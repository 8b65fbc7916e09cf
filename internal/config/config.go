package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Timezone   string
	Location   *time.Location
	LogLevel   string
	Filter     string
	PolicyFile string
	Policies   []PolicyConfig
	Workers    int
	CacheTTL   time.Duration
	ICS        ICSConfig
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadEnvPolicies reads ICAL_POLICY_0, ICAL_POLICY_1 and so on. Each holds a
// comma separated field list; ICAL_POLICY_<n>_NAME names the policy.
func loadEnvPolicies() []PolicyConfig {
	var policies []PolicyConfig

	for i := 0; i < 100; i++ { // reasonable limit to prevent infinite loop
		prefix := fmt.Sprintf("ICAL_POLICY_%d", i)

		if os.Getenv(prefix) == "" && os.Getenv(prefix+"_NAME") == "" {
			if len(policies) == 0 {
				continue
			}
			break
		}

		policies = append(policies, PolicyConfig{
			Name:        getenv(prefix+"_NAME", fmt.Sprintf("policy_%d", i)),
			Description: getenv(prefix+"_DESCRIPTION", ""),
			Fields:      splitFields(os.Getenv(prefix)),
		})
	}

	return policies
}

func splitFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func Load() (*Config, error) {
	tz := getenv("TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", tz, err)
	}

	workers := func() int {
		n, err := strconv.Atoi(getenv("ICAL_WORKERS", "4"))
		if err != nil || n < 1 {
			return 4
		}
		return n
	}()

	cacheTTL, err := time.ParseDuration(getenv("ICAL_CACHE_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ICAL_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Timezone:   tz,
		Location:   loc,
		LogLevel:   getenv("LOG_LEVEL", "info"),
		Filter:     getenv("ICAL_FILTER", "full"),
		PolicyFile: getenv("ICAL_POLICY_FILE", ""),
		Workers:    workers,
		CacheTTL:   cacheTTL,
		ICS: ICSConfig{
			CompanyName: getenv("ICS_COMPANY_NAME", "w32ical"),
			ProductName: getenv("ICS_PRODUCT_NAME", "Calendar Export"),
			Version:     getenv("ICS_VERSION", "1.0.0"),
			Language:    getenv("ICS_LANGUAGE", "EN"),
		},
	}

	if cfg.PolicyFile != "" {
		filePolicies, err := LoadPolicyFile(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		cfg.Policies = append(cfg.Policies, filePolicies...)
	}
	cfg.Policies = append(cfg.Policies, loadEnvPolicies()...)

	return cfg, nil
}
