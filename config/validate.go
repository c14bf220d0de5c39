package config

import (
	"fmt"
	"strings"
)

var validBackends = map[string]struct{}{
	"leveldb": {},
	"bolt":    {},
	"memory":  {},
}

// Validate checks the top-level fields and resolves every parameter section,
// so a bad value fails at startup instead of mid-round.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress must not be empty")
	}
	backend := strings.ToLower(strings.TrimSpace(c.Backend))
	if _, ok := validBackends[backend]; !ok {
		return fmt.Errorf("unknown backend %q (expected leveldb, bolt or memory)", c.Backend)
	}
	if backend != "memory" && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir must not be empty for backend %q", backend)
	}
	if _, err := c.GameParams(); err != nil {
		return err
	}
	if _, err := c.GateConfig(); err != nil {
		return err
	}
	if _, err := c.CoinParams(); err != nil {
		return err
	}
	return nil
}
