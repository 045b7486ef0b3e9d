package config

import "time"

var Conf Config

type Config struct {
	Server     Server     `mapstructure:"server" json:"server" yaml:"server"`
	Datasource Datasource `mapstructure:"database" json:"database" yaml:"database"`
	Auth       Auth       `mapstructure:"auth" json:"-" yaml:"auth"`
}

type Server struct {
	Port string `mapstructure:"port" json:"port" yaml:"port"`
	Env  string `mapstructure:"env" json:"env" yaml:"env"`
}

type Datasource struct {
	URL string `mapstructure:"url" json:"url" yaml:"url"`
}

// Auth holds the signing secrets and token lifetimes. Access and refresh
// tokens are signed with independent secrets so one leaking does not
// compromise the other.
type Auth struct {
	Issuer          string        `mapstructure:"issuer" yaml:"issuer"`
	AccessSecret    string        `mapstructure:"access_secret" yaml:"access_secret"`
	RefreshSecret   string        `mapstructure:"refresh_secret" yaml:"refresh_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl" yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl" yaml:"refresh_token_ttl"`
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
