package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile = "FNRELAY_CONFIG"

	HookBackendFile   = "file"
	HookBackendMemory = "memory"
	HookBackendRedis  = "redis"
	HookBackendMongo  = "mongo"
)

const defaultBuiltinCategories = "math,text,time,ids,hooks"

type Config struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	BasePath string `yaml:"base_path"`
	DataDir  string `yaml:"data_dir"`
	// Secret signs account keys. Serving refuses to start without it.
	Secret string `yaml:"secret"`
	Debug  bool   `yaml:"debug"`

	BuiltinCategories  string `yaml:"builtin_categories"`
	CallTimeoutSeconds int    `yaml:"call_timeout_seconds"`

	HookBackend     string `yaml:"hook_backend"`
	RedisAddr       string `yaml:"redis_addr"`
	RedisPassword   string `yaml:"redis_password"`
	RedisDB         int    `yaml:"redis_db"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
	AgentMaxSteps   int    `yaml:"agent_max_steps"`
}

func (c Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func Default() Config {
	return Config{
		Host:               "127.0.0.1",
		Port:               "8088",
		BasePath:           "/api",
		DataDir:            ".data",
		BuiltinCategories:  defaultBuiltinCategories,
		CallTimeoutSeconds: 30,
		HookBackend:        HookBackendFile,
		RedisAddr:          "127.0.0.1:6379",
		MongoDatabase:      "fnrelay",
		MongoCollection:    "hooks",
		AgentMaxSteps:      8,
	}
}

// Load reads configuration from FNRELAY_* environment variables over the
// defaults.
func Load() Config {
	cfg := Default()
	applyEnv(&cfg, os.LookupEnv)
	return cfg.normalize()
}

// LoadFile layers, in order: defaults, the YAML file at path, environment.
// An empty path falls back to FNRELAY_CONFIG, then to Load.
func LoadFile(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigFile))
	}
	if path == "" {
		return Load(), nil
	}
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(&cfg, os.LookupEnv)
	return cfg.normalize(), nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return
		}
		*dst = n
	}
	str("FNRELAY_HOST", &cfg.Host)
	str("FNRELAY_PORT", &cfg.Port)
	str("FNRELAY_BASE_PATH", &cfg.BasePath)
	str("FNRELAY_DATA_DIR", &cfg.DataDir)
	str("FNRELAY_SECRET", &cfg.Secret)
	if v, ok := lookup("FNRELAY_DEBUG"); ok && strings.TrimSpace(v) != "" {
		cfg.Debug = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	str("FNRELAY_BUILTIN_CATEGORIES", &cfg.BuiltinCategories)
	num("FNRELAY_CALL_TIMEOUT_SECONDS", &cfg.CallTimeoutSeconds)
	str("FNRELAY_HOOK_BACKEND", &cfg.HookBackend)
	str("FNRELAY_REDIS_ADDR", &cfg.RedisAddr)
	str("FNRELAY_REDIS_PASSWORD", &cfg.RedisPassword)
	num("FNRELAY_REDIS_DB", &cfg.RedisDB)
	str("FNRELAY_MONGO_URI", &cfg.MongoURI)
	str("FNRELAY_MONGO_DATABASE", &cfg.MongoDatabase)
	str("FNRELAY_MONGO_COLLECTION", &cfg.MongoCollection)
	str("ANTHROPIC_API_KEY", &cfg.AnthropicAPIKey)
	str("FNRELAY_ANTHROPIC_API_KEY", &cfg.AnthropicAPIKey)
	str("FNRELAY_ANTHROPIC_MODEL", &cfg.AnthropicModel)
	num("FNRELAY_AGENT_MAX_STEPS", &cfg.AgentMaxSteps)
}

func (c Config) normalize() Config {
	c.BasePath = normalizeBasePath(c.BasePath)
	c.HookBackend = parseHookBackend(c.HookBackend)
	if c.CallTimeoutSeconds < 0 {
		c.CallTimeoutSeconds = 0
	}
	return c
}

// normalizeBasePath yields "" (mount at root) or "/segment" without a
// trailing slash.
func normalizeBasePath(raw string) string {
	p := strings.Trim(strings.TrimSpace(raw), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func parseHookBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case HookBackendMemory:
		return HookBackendMemory
	case HookBackendRedis:
		return HookBackendRedis
	case HookBackendMongo, "mongodb":
		return HookBackendMongo
	case HookBackendFile:
		fallthrough
	default:
		return HookBackendFile
	}
}
