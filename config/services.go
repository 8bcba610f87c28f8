package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeSweeper runs the appointment sweeper.
	ServiceModeSweeper ServiceMode = "sweeper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeSweeper}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeSweeper:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, sweeper)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// SweeperConfig contains appointment sweeper configuration.
type SweeperConfig struct {
	// Interval is the sweeper tick interval.
	Interval time.Duration `env:"SWEEPER_INTERVAL" envDefault:"5m"`

	// Grace is how long after its slot a booked appointment is marked completed.
	Grace time.Duration `env:"SWEEPER_GRACE" envDefault:"2h"`

	// BatchSize is the maximum number of rows to update per statement.
	BatchSize int `env:"SWEEPER_BATCH_SIZE" envDefault:"500"`

	// AlertAfter is the number of consecutive failed sweeps that raises an alert.
	AlertAfter int `env:"SWEEPER_ALERT_AFTER" envDefault:"3"`
}

// Sanitize applies guardrails to sweeper configuration values.
func (s *SweeperConfig) Sanitize() {
	if s.Interval < time.Minute {
		s.Interval = time.Minute
	}
	if s.Grace < 0 {
		s.Grace = 0
	}
	if s.BatchSize <= 0 {
		s.BatchSize = 500
	}
	if s.BatchSize > 10000 {
		s.BatchSize = 10000
	}
	if s.AlertAfter <= 0 {
		s.AlertAfter = 3
	}
}
