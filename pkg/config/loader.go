// Package config parses environment variables into tagged structs.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the process environment using `env` struct tags.
// The storefront server defines its full settings struct in
// internal/config and calls this once at startup.
//
//	type Config struct {
//	    HTTPPort  int      `env:"HTTP_PORT" envDefault:"8080"`
//	    Brokers   []string `env:"KAFKA_BROKERS" envSeparator:","`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
