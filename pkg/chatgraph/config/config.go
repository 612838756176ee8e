// Package config loads chatgraph settings from YAML or JSON files, dotenv
// files and the environment, and validates them.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config is a read-only view over decoded settings such as a YAML or JSON
// document. Keys may be dotted paths ("model.name") into nested sections.
// Accessors fall back to the supplied default when a key is absent or its
// value has the wrong shape.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map yields an empty Config.
func New(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}
	return Config{data: data}
}

// lookup resolves a possibly dotted key.
func (c Config) lookup(key string) (any, bool) {
	if v, ok := c.data[key]; ok {
		return v, true
	}
	head, rest, nested := strings.Cut(key, ".")
	if !nested {
		return nil, false
	}
	sub, ok := asSection(c.data[head])
	if !ok {
		return nil, false
	}
	return sub.lookup(rest)
}

// get converts the value at key with conv, or returns def.
func get[T any](c Config, key string, def T, conv func(any) (T, bool)) T {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	if out, ok := conv(v); ok {
		return out
	}
	return def
}

// Section returns the nested mapping under key. Anything else yields an
// empty Config.
func (c Config) Section(key string) Config {
	return get(c, key, New(nil), asSection)
}

// String returns the string at key.
func (c Config) String(key, def string) string {
	return get(c, key, def, asString)
}

// Duration returns the duration at key. Strings use time.ParseDuration and
// bare numbers count seconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	return get(c, key, def, asDuration)
}

// Bool returns the boolean at key. Strings go through strconv.ParseBool.
func (c Config) Bool(key string, def bool) bool {
	return get(c, key, def, asBool)
}

// Int returns the integer at key. Floats with a fractional part are rejected.
func (c Config) Int(key string, def int) int {
	return get(c, key, def, asInt)
}

// Float returns the number at key.
func (c Config) Float(key string, def float64) float64 {
	return get(c, key, def, asFloat)
}

// Has reports whether key is present, even with a nil value.
func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Raw returns the underlying map. Callers must not modify it.
func (c Config) Raw() map[string]any {
	return c.data
}

func asSection(v any) (Config, bool) {
	switch m := v.(type) {
	case map[string]any:
		return New(m), true
	case Config:
		return m, true
	}
	return Config{}, false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asDuration(v any) (time.Duration, bool) {
	switch d := v.(type) {
	case time.Duration:
		return d, true
	case string:
		parsed, err := time.ParseDuration(d)
		return parsed, err == nil
	case int:
		return time.Duration(d) * time.Second, true
	case int64:
		return time.Duration(d) * time.Second, true
	case float64:
		return time.Duration(d * float64(time.Second)), true
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	}
	return false, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), n == float64(int(n))
	case string:
		parsed, err := strconv.Atoi(n)
		return parsed, err == nil
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	case string:
		parsed, err := strconv.ParseFloat(f, 64)
		return parsed, err == nil
	}
	return 0, false
}
