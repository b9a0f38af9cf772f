package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// Every value can be overridden by the environment variable named in its env tag.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"3m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout bounds a whole API request, a graph build included
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"2m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// JWT holds the RS256 key pair. Authentication is disabled while PublicKey is empty.
	JWT struct {
		// PublicKey verifies bearer tokens, PEM encoded
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey signs tokens minted by the jwt command, PEM encoded
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// Fetcher configures page downloads
	Fetcher struct {
		// RootTimeout bounds the fetch of the URL a request was made for
		RootTimeout time.Duration `env:"FETCHER_ROOT_TIMEOUT" env-default:"10s" yaml:"rootTimeout"`
		// LinkTimeout bounds the whole classification of one discovered link
		LinkTimeout time.Duration `env:"FETCHER_LINK_TIMEOUT" env-default:"5s" yaml:"linkTimeout"`
		// UserAgent is sent with every request
		UserAgent string `env:"FETCHER_USER_AGENT" env-default:"Mozilla/5.0 (compatible; phishgraph/1.0)" yaml:"userAgent"`
		// MaxRedirects is the number of hops followed before giving up
		MaxRedirects int `env:"FETCHER_MAX_REDIRECTS" env-default:"10" yaml:"maxRedirects"`
		// MaxBodyBytes caps how much of a body is read
		MaxBodyBytes int64 `env:"FETCHER_MAX_BODY_BYTES" env-default:"5242880" yaml:"maxBodyBytes"`
	} `yaml:"fetcher"`

	// Registration configures WHOIS and DNS lookups
	Registration struct {
		// Timeout bounds a single WHOIS lookup or DNS probe
		Timeout time.Duration `env:"REGISTRATION_TIMEOUT" env-default:"5s" yaml:"timeout"`
		// Nameserver answers the existence probes of discovered links, host:port
		Nameserver string `env:"REGISTRATION_NAMESERVER" env-default:"8.8.8.8:53" yaml:"nameserver"`
	} `yaml:"registration"`

	// Graph configures link graph builds
	Graph struct {
		// MaxLinks caps how many discovered links are classified per graph
		MaxLinks int `env:"GRAPH_MAX_LINKS" env-default:"100" yaml:"maxLinks"`
		// MaxInFlight is the number of links classified at once across all builds
		MaxInFlight int `env:"GRAPH_MAX_IN_FLIGHT" env-default:"8" yaml:"maxInFlight"`
		// RatePerSecond paces link classifications, 0 disables pacing
		RatePerSecond float64 `env:"GRAPH_RATE_PER_SECOND" env-default:"0" yaml:"ratePerSecond"`
	} `yaml:"graph"`

	// Classifier selects the model. ModelPath wins over URL when both are set.
	Classifier struct {
		// URL is the base URL of a remote model service exposing POST /predict
		URL string `env:"CLASSIFIER_URL" yaml:"url"`
		// ModelPath is a tree ensemble exported as JSON
		ModelPath string `env:"CLASSIFIER_MODEL_PATH" yaml:"modelPath"`
		// Timeout bounds a remote prediction
		Timeout time.Duration `env:"CLASSIFIER_TIMEOUT" env-default:"5s" yaml:"timeout"`
	} `yaml:"classifier"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// LoadEnv fills a Config from defaults and environment variables only.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read environment: %w", err)
	}

	return &cfg, nil
}
