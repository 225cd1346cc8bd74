package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/mibauu"
	ConfigFileName    = "mibauu.yml"

	DefaultBucket           = "mibauu"
	DefaultGCSPublicBaseURL = "https://storage.googleapis.com"
)

// Record store drivers
const (
	StoreDriverSupabase = "supabase"
	StoreDriverPostgres = "postgres"
)

// Object storage drivers
const (
	StorageDriverSupabase = "supabase"
	StorageDriverGCS      = "gcs"
)

// Password auth drivers
const (
	AuthDriverGoTrue = "gotrue"
	AuthDriverLocal  = "local"
)

// Config holds all mibauu server configuration settings
type Config struct {
	// StoreDriver selects the record store backend
	StoreDriver string `yaml:"store_driver" json:"store_driver" validate:"oneof=supabase postgres"`

	// SupabaseURL is the base URL of the managed platform project
	SupabaseURL string `yaml:"supabase_url" json:"supabase_url" validate:"omitempty,url"`

	// SupabaseAnonKey is the access key sent with every platform call
	SupabaseAnonKey string `yaml:"supabase_anon_key" json:"-"`

	// DatabaseURL is the PostgreSQL connection string used by the postgres driver
	// and by local authentication
	DatabaseURL string `yaml:"database_url" json:"-"`

	// StorageDriver selects the object storage backend
	StorageDriver string `yaml:"storage_driver" json:"storage_driver" validate:"oneof=supabase gcs"`

	// Bucket is the object storage bucket holding uploaded images
	Bucket string `yaml:"bucket" json:"bucket" validate:"required"`

	// GCSPublicBaseURL prefixes public object URLs served from GCS
	GCSPublicBaseURL string `yaml:"gcs_public_base_url" json:"gcs_public_base_url" validate:"omitempty,url"`

	// GCSCredentialsFile points at a service account key; empty uses ambient credentials
	GCSCredentialsFile string `yaml:"gcs_credentials_file" json:"gcs_credentials_file"`

	// AuthDriver selects the password authentication backend
	AuthDriver string `yaml:"auth_driver" json:"auth_driver" validate:"oneof=gotrue local"`

	// JWTSecret signs bearer tokens issued by local authentication
	JWTSecret string `yaml:"jwt_secret" json:"-"`

	// TokenTTL is the lifetime of locally issued tokens in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl" validate:"gt=0"`

	// RequestTimeout bounds every outbound platform call, in seconds
	RequestTimeout int `yaml:"request_timeout" json:"request_timeout" validate:"gt=0"`

	// LogLevel is the minimum zerolog level
	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=trace debug info warn error"`

	// LogFormat is json or console
	LogFormat string `yaml:"log_format" json:"log_format" validate:"oneof=json console"`

	BindAddress string `yaml:"bind_address" json:"bind_address" validate:"required"`
	Port        string `yaml:"port" json:"port" validate:"required,numeric"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// attribute binds a config key to its environment variable and accessors.
type attribute struct {
	name   string
	env    string
	secret bool
	get    func(c *Config) string
	set    func(c *Config, v string) bool
}

func stringAttr(name, env string, secret bool, field func(c *Config) *string) attribute {
	return attribute{
		name:   name,
		env:    env,
		secret: secret,
		get:    func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) bool {
			if v == "" {
				return false
			}
			*field(c) = v
			return true
		},
	}
}

func intAttr(name, env string, field func(c *Config) *int) attribute {
	return attribute{
		name: name,
		env:  env,
		get:  func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) bool {
			i, err := strconv.Atoi(v)
			if err != nil || i == 0 {
				return false
			}
			*field(c) = i
			return true
		},
	}
}

var attributes = []attribute{
	stringAttr("store_driver", "MIBAUU_STORE_DRIVER", false, func(c *Config) *string { return &c.StoreDriver }),
	stringAttr("supabase_url", "SUPABASE_URL", false, func(c *Config) *string { return &c.SupabaseURL }),
	stringAttr("supabase_anon_key", "SUPABASE_ANON_KEY", true, func(c *Config) *string { return &c.SupabaseAnonKey }),
	stringAttr("database_url", "DATABASE_URL", true, func(c *Config) *string { return &c.DatabaseURL }),
	stringAttr("storage_driver", "MIBAUU_STORAGE_DRIVER", false, func(c *Config) *string { return &c.StorageDriver }),
	stringAttr("bucket", "MIBAUU_BUCKET", false, func(c *Config) *string { return &c.Bucket }),
	stringAttr("gcs_public_base_url", "MIBAUU_GCS_PUBLIC_BASE_URL", false, func(c *Config) *string { return &c.GCSPublicBaseURL }),
	stringAttr("gcs_credentials_file", "MIBAUU_GCS_CREDENTIALS_FILE", false, func(c *Config) *string { return &c.GCSCredentialsFile }),
	stringAttr("auth_driver", "MIBAUU_AUTH_DRIVER", false, func(c *Config) *string { return &c.AuthDriver }),
	stringAttr("jwt_secret", "MIBAUU_JWT_SECRET", true, func(c *Config) *string { return &c.JWTSecret }),
	intAttr("token_ttl", "MIBAUU_TOKEN_TTL", func(c *Config) *int { return &c.TokenTTL }),
	intAttr("request_timeout", "MIBAUU_REQUEST_TIMEOUT", func(c *Config) *int { return &c.RequestTimeout }),
	stringAttr("log_level", "MIBAUU_LOG_LEVEL", false, func(c *Config) *string { return &c.LogLevel }),
	stringAttr("log_format", "MIBAUU_LOG_FORMAT", false, func(c *Config) *string { return &c.LogFormat }),
	stringAttr("bind_address", "BIND_ADDRESS", false, func(c *Config) *string { return &c.BindAddress }),
	stringAttr("port", "PORT", false, func(c *Config) *string { return &c.Port }),
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		StoreDriver:      StoreDriverSupabase,
		StorageDriver:    StorageDriverSupabase,
		Bucket:           DefaultBucket,
		GCSPublicBaseURL: DefaultGCSPublicBaseURL,
		AuthDriver:       AuthDriverGoTrue,
		TokenTTL:         3600,
		RequestTimeout:   30,
		LogLevel:         "info",
		LogFormat:        "json",
		BindAddress:      "0.0.0.0",
		Port:             "8000",
		sources:          make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, attr := range attributes {
		config.sources[attr.name] = "default"
	}

	configPath := os.Getenv("MIBAUU_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.apply(&fileConfig)
	}

	config.applyEnv()

	return config, nil
}

// apply copies every non-zero value of file into c
func (c *Config) apply(file *Config) {
	for _, attr := range attributes {
		if attr.set(c, attr.get(file)) {
			c.sources[attr.name] = "file"
		}
	}
}

func (c *Config) applyEnv() {
	for _, attr := range attributes {
		if attr.set(c, os.Getenv(attr.env)) {
			c.sources[attr.name] = "environment"
		}
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Timeout returns the outbound request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// TokenLifetime returns the local token TTL as a duration
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// Validate checks field formats and the settings each selected driver needs
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s value: %q", attributeName(fe.StructField()), fmt.Sprint(fe.Value()))
		}
		return err
	}

	needsPlatform := c.StoreDriver == StoreDriverSupabase ||
		c.StorageDriver == StorageDriverSupabase ||
		c.AuthDriver == AuthDriverGoTrue
	if needsPlatform {
		if c.SupabaseURL == "" {
			return fmt.Errorf("supabase_url is required (SUPABASE_URL)")
		}
		if c.SupabaseAnonKey == "" {
			return fmt.Errorf("supabase_anon_key is required (SUPABASE_ANON_KEY)")
		}
	}

	if (c.StoreDriver == StoreDriverPostgres || c.AuthDriver == AuthDriverLocal) && c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required (DATABASE_URL)")
	}

	if c.AuthDriver == AuthDriverLocal && len(c.JWTSecret) < 32 {
		return fmt.Errorf("jwt_secret must be at least 32 characters (MIBAUU_JWT_SECRET)")
	}

	return nil
}

func attributeName(field string) string {
	for _, attr := range attributes {
		if strings.ReplaceAll(attr.name, "_", "") == strings.ToLower(field) {
			return attr.name
		}
	}
	return field
}

// Attributes returns all configuration attributes with their values and sources.
// Secret values are masked.
func (c *Config) Attributes() []Attribute {
	result := make([]Attribute, 0, len(attributes))
	for _, attr := range attributes {
		value := attr.get(c)
		if attr.secret && value != "" {
			value = "********"
		}
		result = append(result, Attribute{Name: attr.name, Value: value, Source: c.Source(attr.name)})
	}
	return result
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
