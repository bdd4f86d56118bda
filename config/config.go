// Package config loads the instantiiif configuration from TOML, YAML or
// JSON (with comments) files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/greut/instantiiif/iiif"
)

// Env names the environment variable holding the default configuration file.
const Env = "INSTANTIIIF_CONFIG"

// Cache backends.
const (
	BackendGroupcache = "groupcache"
	BackendRedis      = "redis"
	BackendNone       = "none"
)

// ErrInvalid is returned for configurations that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config stores the instantiiif configuration.
type Config struct {
	Host string `toml:"host" yaml:"host" json:"host"`
	Port int    `toml:"port" yaml:"port" json:"port"`
	// Timeout of upstream requests, in seconds.
	Timeout       int                 `toml:"timeout" yaml:"timeout" json:"timeout"`
	UserAgent     string              `toml:"userAgent" yaml:"userAgent" json:"userAgent"`
	Retries       int                 `toml:"retries" yaml:"retries" json:"retries"`
	Providers     []ProviderConfig    `toml:"providers" yaml:"providers" json:"providers"`
	LandingLabels map[string][]string `toml:"landingLabels" yaml:"landingLabels" json:"landingLabels"`
	Cache         CacheConfig         `toml:"cache" yaml:"cache" json:"cache"`
}

// ProviderConfig is one entry of the ordered provider list.
type ProviderConfig struct {
	ID              string `toml:"id" yaml:"id" json:"id"`
	IDPattern       string `toml:"idPattern" yaml:"idPattern" json:"idPattern"`
	ManifestPattern string `toml:"manifestPattern" yaml:"manifestPattern" json:"manifestPattern"`
}

// CacheConfig represents the configuration information regarding the cache.
type CacheConfig struct {
	Backend string `toml:"backend" yaml:"backend" json:"backend"`
	// Size of the groupcache group, like "64M".
	Size string `toml:"size" yaml:"size" json:"size"`
	// TTL of cached documents, in seconds.
	TTL int64 `toml:"ttl" yaml:"ttl" json:"ttl"`
	// HTTP is the Cache-Control max-age of responses, in seconds.
	HTTP        int64       `toml:"http" yaml:"http" json:"http"`
	Peers       []string    `toml:"peers" yaml:"peers" json:"peers"`
	MaxDocument string      `toml:"maxDocument" yaml:"maxDocument" json:"maxDocument"`
	Redis       RedisConfig `toml:"redis" yaml:"redis" json:"redis"`

	SizeBytes        int64 `toml:"-" yaml:"-" json:"-"`
	MaxDocumentBytes int64 `toml:"-" yaml:"-" json:"-"`
}

// RedisConfig locates the redis server of the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr" json:"addr"`
	Password string `toml:"password" yaml:"password" json:"password"`
	DB       int    `toml:"db" yaml:"db" json:"db"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	labels := make(map[string][]string, len(iiif.DefaultLandingLabels))
	for k, v := range iiif.DefaultLandingLabels {
		labels[k] = append([]string(nil), v...)
	}
	return &Config{
		Host:          "localhost",
		Port:          8080,
		Timeout:       10,
		LandingLabels: labels,
		Cache: CacheConfig{
			Backend:     BackendGroupcache,
			Size:        "64M",
			TTL:         3600,
			HTTP:        3600,
			MaxDocument: "16M",
			Redis:       RedisConfig{Addr: "localhost:6379"},
		},
	}
}

// Load reads the configuration file at path, falling back to the file
// named by $INSTANTIIIF_CONFIG, and to the defaults when neither is set.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(Env)
	}
	if path == "" {
		c := Default()
		return c, c.normalize()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes data in the format given by a file extension: .toml, .yaml,
// .yml, .json or .jsonc. Absent values keep their defaults; landing labels
// are merged with the default ones.
func Parse(data []byte, ext string) (*Config, error) {
	c := Default()

	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, err
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalid, ext)
	}

	return c, c.normalize()
}

func (c *Config) normalize() error {
	if c.Timeout <= 0 {
		c.Timeout = 10
	}
	if c.Retries < 0 {
		c.Retries = 0
	}

	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = BackendGroupcache
	case BackendGroupcache, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalid, c.Cache.Backend)
	}

	if c.Cache.Size == "" {
		c.Cache.Size = "64M"
	}
	size, err := bytefmt.ToBytes(c.Cache.Size)
	if err != nil {
		return fmt.Errorf("%w: cache size %q: %v", ErrInvalid, c.Cache.Size, err)
	}
	c.Cache.SizeBytes = int64(size)

	if c.Cache.MaxDocument != "" {
		limit, err := bytefmt.ToBytes(c.Cache.MaxDocument)
		if err != nil {
			return fmt.Errorf("%w: max document %q: %v", ErrInvalid, c.Cache.MaxDocument, err)
		}
		c.Cache.MaxDocumentBytes = int64(limit)
	}
	return nil
}

// TimeoutDuration is the upstream request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// TTLDuration is how long fetched documents are cached.
func (c *CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// Addr is the listening address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%v:%v", c.Host, c.Port)
}

// IIIFProviders compiles the provider list. Providers without a
// manifestPattern cannot serve anything and are left out.
func (c *Config) IIIFProviders() ([]iiif.Provider, error) {
	providers := make([]iiif.Provider, 0, len(c.Providers))
	for i, p := range c.Providers {
		if p.ManifestPattern == "" {
			continue
		}

		provider := iiif.Provider{ID: p.ID, ManifestPattern: p.ManifestPattern}
		if p.IDPattern != "" {
			re, err := CompilePattern(p.IDPattern)
			if err != nil {
				return nil, fmt.Errorf("%w: provider %d (%s): %v", ErrInvalid, i, p.ID, err)
			}
			provider.IDPattern = re
		}
		providers = append(providers, provider)
	}
	return providers, nil
}

// CompilePattern compiles a Go regular expression, or a delimited one with
// trailing flags like `/^df_/i`.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if body, flags, ok := splitDelimited(pattern); ok {
		var goFlags strings.Builder
		for _, f := range flags {
			switch f {
			case 'i', 'm', 's', 'U':
				if !strings.ContainsRune(goFlags.String(), f) {
					goFlags.WriteRune(f)
				}
			case 'u', 'D':
				// always on in RE2
			default:
				return nil, fmt.Errorf("unsupported flag %q in %s", f, pattern)
			}
		}
		if goFlags.Len() > 0 {
			body = "(?" + goFlags.String() + ")" + body
		}
		pattern = body
	}
	return regexp.Compile(pattern)
}

func splitDelimited(pattern string) (string, string, bool) {
	if len(pattern) < 2 || !strings.ContainsRune("/#~!@%|+", rune(pattern[0])) {
		return "", "", false
	}
	end := strings.LastIndexByte(pattern, pattern[0])
	if end == 0 {
		return "", "", false
	}
	return pattern[1:end], pattern[end+1:], true
}
