package presence

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// Config holds the presence module configuration.
type Config struct {
	DiscordID             snowflake.ID  `env:"DISCORD_ID,notEmpty"`
	LanyardAPIURL         string        `env:"LANYARD_API_URL"         envDefault:"https://api.lanyard.rest"`
	LanyardSocketURL      string        `env:"LANYARD_SOCKET_URL"      envDefault:"wss://api.lanyard.rest/socket"`
	BannerAPIURL          string        `env:"BANNER_API_URL"          envDefault:"https://discordlookup.mesalytic.moe"`
	BannerRefreshInterval time.Duration `env:"BANNER_REFRESH_INTERVAL" envDefault:"30s"`
	HTTPTimeout           time.Duration `env:"HTTP_TIMEOUT"            envDefault:"10s"`
	Badges                []string      `env:"PRESENCE_BADGES"         envDefault:"nitro,active_developer,verified_developer" envSeparator:","`
	NATSURL               string        `env:"NATS_URL"`
	NATSSubjectPrefix     string        `env:"NATS_SUBJECT_PREFIX"     envDefault:"presence"`
}

var snowflakeParsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(snowflake.ID(0)): func(v string) (any, error) {
		return snowflake.Parse(v)
	},
}

// loadConfig parses the presence configuration from the environment.
// Any failure wraps domain.ErrConfig.
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{FuncMap: snowflakeParsers}); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	if cfg.DiscordID == 0 {
		return nil, fmt.Errorf("%w: DISCORD_ID must be a non-zero snowflake", domain.ErrConfig)
	}
	if cfg.BannerRefreshInterval <= 0 {
		return nil, fmt.Errorf("%w: BANNER_REFRESH_INTERVAL must be positive", domain.ErrConfig)
	}
	return cfg, nil
}
