package xadrv

import "github.com/endurox-dev/exgo/internal/config"

// Well-known symbol names exported by the driver library.
const (
	DefaultSwitchSymbol       = "ndrxjsw"
	DefaultHostInitSymbol     = "ndrxj_xa_init"
	DefaultEmbeddedInitSymbol = "ndrxj_xa_init_embedded"
)

// Config names the driver library and its symbols.
type Config struct {
	// RMLib is the resource-manager library opened when the switch is not
	// already present in the process image.
	RMLib string `env:"NDRX_XA_RMLIB"`

	Symbol             string `env:"NDRXJ_XA_SWITCH" envDefault:"ndrxjsw"`
	HostInitSymbol     string `env:"NDRXJ_XA_INIT" envDefault:"ndrxj_xa_init"`
	EmbeddedInitSymbol string `env:"NDRXJ_XA_INIT_EMBEDDED" envDefault:"ndrxj_xa_init_embedded"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.Symbol == "" {
		c.Symbol = DefaultSwitchSymbol
	}
	if c.HostInitSymbol == "" {
		c.HostInitSymbol = DefaultHostInitSymbol
	}
	if c.EmbeddedInitSymbol == "" {
		c.EmbeddedInitSymbol = DefaultEmbeddedInitSymbol
	}
	return c
}
