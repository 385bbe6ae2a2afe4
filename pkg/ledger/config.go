package ledger

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config describes the ledger endpoint and the contract fingerprints are
// recorded against. An empty EndpointURL disables recording.
type Config struct {
	EndpointURL     string `toml:"endpoint_url"`
	CredentialRef   string `toml:"credential_ref"`
	ContractAddress string `toml:"contract_address"`
	ChainID         int64  `toml:"chain_id"`
	GasLimit        uint64 `toml:"gas_limit"`
	Timeout         string `toml:"timeout"`
	PollInterval    string `toml:"poll_interval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	EndpointURL     string
	CredentialRef   string
	ContractAddress string
	ChainID         string
	GasLimit        string
	Timeout         string
	PollInterval    string
}

// Enabled reports whether a ledger endpoint is configured.
func (c *Config) Enabled() bool {
	return c.EndpointURL != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
// Endpoint-specific fields are only validated when the ledger is enabled.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.EndpointURL != "" {
		c.EndpointURL = overlay.EndpointURL
	}
	if overlay.CredentialRef != "" {
		c.CredentialRef = overlay.CredentialRef
	}
	if overlay.ContractAddress != "" {
		c.ContractAddress = overlay.ContractAddress
	}
	if overlay.ChainID != 0 {
		c.ChainID = overlay.ChainID
	}
	if overlay.GasLimit != 0 {
		c.GasLimit = overlay.GasLimit
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "15s"
	}
	if c.PollInterval == "" {
		c.PollInterval = "1s"
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env.EndpointURL != "" {
		if v := os.Getenv(env.EndpointURL); v != "" {
			c.EndpointURL = v
		}
	}
	if env.CredentialRef != "" {
		if v := os.Getenv(env.CredentialRef); v != "" {
			c.CredentialRef = v
		}
	}
	if env.ContractAddress != "" {
		if v := os.Getenv(env.ContractAddress); v != "" {
			c.ContractAddress = v
		}
	}
	if env.ChainID != "" {
		if v := os.Getenv(env.ChainID); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", env.ChainID, err)
			}
			c.ChainID = id
		}
	}
	if env.GasLimit != "" {
		if v := os.Getenv(env.GasLimit); v != "" {
			gas, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", env.GasLimit, err)
			}
			c.GasLimit = gas
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.PollInterval != "" {
		if v := os.Getenv(env.PollInterval); v != "" {
			c.PollInterval = v
		}
	}
	return nil
}

func (c *Config) validate() error {
	for name, v := range map[string]string{"timeout": c.Timeout, "poll_interval": c.PollInterval} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if !c.Enabled() {
		return nil
	}

	if _, err := url.ParseRequestURI(c.EndpointURL); err != nil {
		return fmt.Errorf("invalid endpoint_url: %w", err)
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("invalid contract_address: %q", c.ContractAddress)
	}
	if c.CredentialRef == "" {
		return fmt.Errorf("credential_ref required when endpoint_url is set")
	}
	if !strings.HasPrefix(c.CredentialRef, "env:") && !strings.HasPrefix(c.CredentialRef, "file:") {
		return fmt.Errorf("credential_ref must use env: or file: scheme")
	}
	if c.ChainID < 0 {
		return fmt.Errorf("chain_id must not be negative")
	}
	return nil
}
