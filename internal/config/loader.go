package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load builds a Config from the process environment, fills defaults from
// struct tags and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	cfg.Source.Kind = strings.ToLower(strings.TrimSpace(cfg.Source.Kind))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// loadStruct walks v's fields. Fields tagged env are read from that
// variable, then envAlt, then default; nested structs are walked.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != timeType {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		value := lookupEnv(name, field.Tag.Get("envAlt"))
		if value == "" {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", name)
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}

	return nil
}

func lookupEnv(name, alt string) string {
	if v := os.Getenv(name); v != "" || alt == "" {
		return v
	}
	return os.Getenv(alt)
}

// setField parses value into field. Durations use time.ParseDuration;
// string slices are comma separated with blanks dropped.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		field.Set(reflect.ValueOf(splitList(value)))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate collects every problem with c into one error.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Source.Kind) {
	case SourceFile:
		if c.Source.File == "" {
			errs = append(errs, "SOURCE_FILE is required when SOURCE_KIND=file")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required when SOURCE_KIND=postgres")
		}
		if c.Source.Table == "" {
			errs = append(errs, "SOURCE_TABLE is required when SOURCE_KIND=postgres")
		}
	case SourceSQLite, SourceMySQL:
		if c.Source.DSN == "" {
			errs = append(errs, fmt.Sprintf("SOURCE_DSN is required when SOURCE_KIND=%s", c.Source.Kind))
		}
		if c.Source.Table == "" {
			errs = append(errs, fmt.Sprintf("SOURCE_TABLE is required when SOURCE_KIND=%s", c.Source.Kind))
		}
	default:
		errs = append(errs, fmt.Sprintf("SOURCE_KIND (%q) must be one of: file, postgres, sqlite, mysql", c.Source.Kind))
	}
	if c.Source.MaxFetches <= 0 {
		errs = append(errs, "SOURCE_MAX_FETCHES must be positive")
	}
	if c.Source.Watch && c.Source.Kind != SourceFile {
		errs = append(errs, "SOURCE_WATCH only applies to SOURCE_KIND=file")
	}
	if c.Source.FetchTimeout <= 0 {
		errs = append(errs, "SOURCE_FETCH_TIMEOUT must be positive")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}
	if c.Session.CleanupInterval <= 0 {
		errs = append(errs, "SESSION_CLEANUP_INTERVAL must be positive")
	}
	if c.Session.CookieName == "" {
		errs = append(errs, "SESSION_COOKIE must not be empty")
	}

	if c.Cache.RedisURL != "" {
		if c.Cache.TTL <= 0 {
			errs = append(errs, "CACHE_TTL must be positive")
		}
		if c.Cache.Key == "" {
			errs = append(errs, "CACHE_KEY must not be empty")
		}
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "SECURITY_API_KEYS is required when SECURITY_REQUIRE_API_KEY=true")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String summarizes c for the startup log. Connection strings carry
// credentials and are printed as [MASKED].
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Source: {Kind: %q, File: %q, Table: %q, DSN: %s}, ",
		c.Source.Kind, c.Source.File, c.Source.Table, masked(c.Source.DSN))
	if c.Database.URL != "" {
		fmt.Fprintf(&b, "Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
			c.Database.MaxConns, c.Database.MinConns)
	}
	fmt.Fprintf(&b, "Grid: {LayoutPath: %q}, ", c.Grid.LayoutPath)
	fmt.Fprintf(&b, "Session: {TTL: %s}, ", c.Session.TTL)
	if c.Cache.RedisURL != "" {
		fmt.Fprintf(&b, "Cache: {RedisURL: [MASKED], TTL: %s}, ", c.Cache.TTL)
	}
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func masked(secret string) string {
	if secret == "" {
		return `""`
	}
	return "[MASKED]"
}
