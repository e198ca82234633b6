package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
// It configures everything around the container, never the services in it;
// those read parameters (see EnvParameters).
type Config struct {
	App     AppConfig
	Log     LogConfig
	Inspect InspectConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool

	// ParamPrefix selects the environment variables turned into container
	// parameters.
	ParamPrefix string

	// ParamFile is the YAML parameters file read by LoadParameters.
	ParamFile string
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

type InspectConfig struct {
	Enabled bool
	Addr    string
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:        env("APP_NAME", "go-container"),
			Env:         env("APP_ENV", "local"),
			Debug:       envBool("APP_DEBUG", false),
			ParamPrefix: env("APP_PARAM_PREFIX", "PARAM_"),
			ParamFile:   env("APP_PARAM_FILE", "parameters.yaml"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "json"),
		},
		Inspect: InspectConfig{
			Enabled: envBool("INSPECT_ENABLED", false),
			Addr:    env("INSPECT_ADDR", ":8081"),
		},
	}
}

// EnvParameters collects every environment variable starting with prefix as
// a container parameter. The prefix is stripped, "__" becomes ".", and the
// rest is lower-cased:
//
//	PARAM_MAILER__TRANSPORT=sendmail  →  mailer.transport = "sendmail"
//	PARAM_MAILER__MAX_RETRIES=3       →  mailer.max_retries = "3"
//
// Values stay strings. Variables whose name is only the prefix are skipped.
func EnvParameters(prefix string) map[string]any {
	params := make(map[string]any)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		name := ParameterName(strings.TrimPrefix(key, prefix))
		if name == "" {
			continue
		}
		params[name] = value
	}
	return params
}

// ParameterName converts an environment variable name, without its prefix,
// to a parameter name.
func ParameterName(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "__", "."))
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
