package app

import (
	"fmt"

	"careline/pkg/config"
)

// validateConfig fails fast on a config the server cannot run with.
func validateConfig(cfg *config.Config, addr, dbPath string) error {
	if addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if dbPath == "" {
		return fmt.Errorf("db path is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set CARELINE_JWT_SECRET or the config file)")
	}
	if (cfg.Server.TLS.CertFile == "") != (cfg.Server.TLS.KeyFile == "") {
		return fmt.Errorf("tls requires both cert_file and key_file")
	}
	return nil
}
