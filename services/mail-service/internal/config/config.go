package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	FrontendURL string

	Server struct {
		Addr string
	}

	Database struct {
		URL string
	}

	Store struct {
		// Driver is "postgres" or "memory".
		Driver string
	}

	Google struct {
		ClientID       string
		ClientSecret   string
		BackendBaseURL string
		RedirectURI    string
		APIEndpoint    string
		AuthURL        string
		TokenURL       string
	}

	Session struct {
		Secret string
		TTL    time.Duration
	}

	Classifier struct {
		Keywords []string
		Domains  []string
	}

	Provider struct {
		Timeout time.Duration
	}

	Log struct {
		Level  string
		Pretty bool
	}
}

// Production reports whether cookies must be cross-site capable.
func (c Config) Production() bool {
	return c.Environment == "production"
}

// Load reads the configuration from viper.
func Load() (Config, error) {
	var cfg Config

	cfg.Environment = viper.GetString("environment")
	cfg.FrontendURL = viper.GetString("frontend_url")
	cfg.Server.Addr = viper.GetString("server.addr")
	cfg.Database.URL = viper.GetString("database.url")
	cfg.Store.Driver = viper.GetString("store.driver")

	cfg.Google.ClientID = viper.GetString("google.client_id")
	cfg.Google.ClientSecret = viper.GetString("google.client_secret")
	cfg.Google.BackendBaseURL = viper.GetString("google.backend_base_url")
	cfg.Google.RedirectURI = viper.GetString("google.redirect_uri")
	cfg.Google.APIEndpoint = viper.GetString("google.api_endpoint")
	cfg.Google.AuthURL = viper.GetString("google.auth_url")
	cfg.Google.TokenURL = viper.GetString("google.token_url")

	cfg.Session.Secret = viper.GetString("session.secret")
	cfg.Session.TTL = viper.GetDuration("session.ttl")

	cfg.Classifier.Keywords = viper.GetStringSlice("classifier.keywords")
	cfg.Classifier.Domains = viper.GetStringSlice("classifier.domains")

	cfg.Provider.Timeout = viper.GetDuration("provider.timeout")

	cfg.Log.Level = viper.GetString("log.level")
	cfg.Log.Pretty = viper.GetBool("log.pretty")

	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Database.URL == "" {
			return cfg, fmt.Errorf("database.url not configured")
		}
	case "memory":
	default:
		return cfg, fmt.Errorf("unknown store.driver %q", cfg.Store.Driver)
	}
	if cfg.Session.Secret == "" {
		return cfg, fmt.Errorf("session.secret not configured")
	}

	return cfg, nil
}
