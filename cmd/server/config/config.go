package config

import (
	"fmt"
	"os"
	"time"
)

// BaseConfig is the application configuration container. Values load from
// config files via go-config with environment overrides.
type BaseConfig struct {
	App         App         `json:"app" yaml:"app"`
	Auth        Auth        `json:"auth" yaml:"auth"`
	Persistence Persistence `json:"persistence" yaml:"persistence"`
}

func (c *BaseConfig) Validate() error {
	if c.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	return nil
}

func (c *BaseConfig) GetApp() App                 { return c.App }
func (c *BaseConfig) GetAuth() Auth               { return c.Auth }
func (c *BaseConfig) GetPersistence() Persistence { return c.Persistence }

type App struct {
	Address string `json:"address" yaml:"address"`
}

func (a App) GetAddress() string {
	if a.Address == "" {
		return ":8080"
	}
	return a.Address
}

// Auth satisfies the accounts.Config contract.
type Auth struct {
	SigningKey      string   `json:"signing_key" yaml:"signing_key"`
	TokenExpiration int      `json:"token_expiration" yaml:"token_expiration"`
	Issuer          string   `json:"issuer" yaml:"issuer"`
	Audience        []string `json:"audience" yaml:"audience"`
}

func (a Auth) GetSigningKey() string {
	if a.SigningKey == "" {
		return os.Getenv("AUTH_SIGNING_KEY")
	}
	return a.SigningKey
}

func (a Auth) GetTokenExpiration() int {
	if a.TokenExpiration == 0 {
		return 24
	}
	return a.TokenExpiration
}

func (a Auth) GetIssuer() string {
	if a.Issuer == "" {
		return "go-accounts"
	}
	return a.Issuer
}

func (a Auth) GetAudience() []string { return a.Audience }

type Persistence struct {
	Debug                 bool   `json:"debug" yaml:"debug"`
	Driver                string `json:"driver" yaml:"driver"`
	DSN                   string `json:"dsn" yaml:"dsn"`
	PingTimeoutExpression string `json:"ping_timeout" yaml:"ping_timeout"`
}

func (p Persistence) GetDebug() bool { return p.Debug }

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file:accounts.db?cache=shared"
	}
	return p.DSN
}

func (p Persistence) GetServer() string { return p.GetDSN() }

func (p Persistence) GetOtelIdentifier() string { return "" }

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}

	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}
