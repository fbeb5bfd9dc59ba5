package config

import (
	"errors"
	"fmt"
)

// Validate reports every setting the server cannot start without in one error.
func (c Config) Validate() error {
	var errs []error
	required := []struct {
		env string
		set bool
	}{
		{"DATABASE_URL", c.DatabaseURL != ""},
		{"JWT_SECRET", len(c.JWTAccessSecret) > 0},
		{"JWT_REFRESH_SECRET", len(c.JWTRefreshSecret) > 0},
	}
	for _, r := range required {
		if !r.set {
			errs = append(errs, fmt.Errorf("missing required env %s", r.env))
		}
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.ServerPort))
	}
	return errors.Join(errs...)
}
