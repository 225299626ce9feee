package config

import (
	"encoding/hex"
	"fmt"
)

// minMasterKeyBytes is the minimum decoded length of the custody master
// secret. HKDF stretches it to the AES-256 key size either way, but a
// short secret would undermine the custodial encryption entirely.
const minMasterKeyBytes = 32

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	raw, err := hex.DecodeString(c.Custody.MasterKey)
	if err != nil {
		return fmt.Errorf("custody.master_key must be hex-encoded: %w", err)
	}
	if len(raw) < minMasterKeyBytes {
		return fmt.Errorf("custody.master_key must decode to at least %d bytes (got %d)", minMasterKeyBytes, len(raw))
	}

	if c.Cleanup.SupervisorPendingTTL <= 0 {
		return fmt.Errorf("cleanup.supervisor_pending_ttl must be > 0 (got %v)", c.Cleanup.SupervisorPendingTTL)
	}

	return nil
}

// MasterKeyBytes returns the decoded custody master secret. Validate must
// have succeeded first.
func (c *CustodyConfig) MasterKeyBytes() []byte {
	raw, _ := hex.DecodeString(c.MasterKey)
	return raw
}
