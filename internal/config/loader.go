package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"meshd/internal/stager"
)

// Staging mode selectors.
const (
	StagingReplicate = "replicate"
	StagingS3        = "s3"
)

// DefaultModelVersion is the provider model used when a request omits version.
const DefaultModelVersion = "e0d3fe8abce3ba86497ea3530d9eae59af7b2231b6c82bedfc32b0732d35ec3a"

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
// The provider token is deliberately env-only (REPLICATE_API_TOKEN) and never
// read from a config file.
type Config struct {
	Addr          string          `json:"addr" yaml:"addr" toml:"addr"`
	AllowedOrigin string          `json:"allowed_origin" yaml:"allowed_origin" toml:"allowed_origin"`
	ProviderURL   string          `json:"provider_url" yaml:"provider_url" toml:"provider_url"`
	ModelVersion  string          `json:"model_version" yaml:"model_version" toml:"model_version"`
	OutputFormat  string          `json:"output_format" yaml:"output_format" toml:"output_format"`
	Staging       string          `json:"staging" yaml:"staging" toml:"staging"`
	MaxBodyBytes  int64           `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	S3            stager.S3Config `json:"s3" yaml:"s3" toml:"s3"`

	Token string `json:"-" yaml:"-" toml:"-"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. Env wins over file values
// so deployments can keep secrets and per-host settings out of the file.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Addr, "MESHD_ADDR")
	set(&c.AllowedOrigin, "MESHD_ALLOWED_ORIGIN")
	set(&c.ProviderURL, "MESHD_PROVIDER_URL")
	set(&c.ModelVersion, "MESHD_MODEL_VERSION")
	set(&c.OutputFormat, "MESHD_OUTPUT_FORMAT")
	set(&c.Staging, "MESHD_STAGING")
	set(&c.Token, "REPLICATE_API_TOKEN")
	set(&c.S3.Bucket, "MESHD_S3_BUCKET")
	set(&c.S3.Region, "MESHD_S3_REGION")
	set(&c.S3.Endpoint, "MESHD_S3_ENDPOINT")
	set(&c.S3.Prefix, "MESHD_S3_PREFIX")
	set(&c.S3.PublicBaseURL, "MESHD_S3_PUBLIC_BASE_URL")
	set(&c.S3.AccessKey, "MESHD_S3_ACCESS_KEY")
	set(&c.S3.SecretKey, "MESHD_S3_SECRET_KEY")
}

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ModelVersion == "" {
		c.ModelVersion = DefaultModelVersion
	}
	if c.OutputFormat == "" {
		c.OutputFormat = "glb"
	}
	if c.Staging == "" {
		c.Staging = StagingReplicate
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 10 << 20
	}
}

// Validate rejects configurations meshd cannot start with. A missing token is
// not a startup error: it is reported per request as a configuration error so
// the daemon can come up before secrets are attached.
func (c *Config) Validate() error {
	switch c.Staging {
	case StagingReplicate:
	case StagingS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("staging %q requires s3.bucket", c.Staging)
		}
	default:
		return fmt.Errorf("unknown staging mode %q", c.Staging)
	}
	return nil
}
