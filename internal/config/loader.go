package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GetConfigPath returns the config path from CONFIG_PATH or the default.
func GetConfigPath(defaultPath string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultPath
}

// loadWithDefaults reads a YAML config file, applies defaults, then applies
// env-tag overrides. Environment variables always win over file values and
// defaults. A .env file next to the binary is loaded first if present.
func loadWithDefaults[T any](path string, setDefaults func(*T)) (*T, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg T
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if setDefaults != nil {
		setDefaults(&cfg)
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// applyEnvOverrides walks the struct and applies `env:"VAR"` tagged values.
func applyEnvOverrides(cfg any) {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	applyEnvToStruct(v)
}

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			applyEnvToStruct(field)
			continue
		}

		envTag := t.Field(i).Tag.Get("env")
		if envTag == "" {
			continue
		}

		envVal := os.Getenv(envTag)
		if envVal == "" {
			continue
		}

		setFieldFromString(field, envVal)
	}
}

func setFieldFromString(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			field.SetFloat(f)
		}

	case reflect.Bool:
		field.SetBool(parseBool(val))
	}
}

// parseBool accepts "true", "1" and "yes" (case-insensitive).
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
