package featureflags

import (
	"os"
	"strings"
)

// Set resolves flags through a lookup, normally os.LookupEnv. Flags are
// read as FLAG_<NAME>=true/1/yes/on (case-insensitive).
type Set struct {
	lookup func(string) (string, bool)
}

// FromEnv reads flags from the process environment
func FromEnv() *Set {
	return &Set{lookup: os.LookupEnv}
}

// FromMap resolves flags from fixed values, keyed by FLAG_<NAME>
func FromMap(values map[string]string) *Set {
	return &Set{lookup: func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}}
}

// Enabled reports whether name is switched on
func (s *Set) Enabled(name string) bool {
	v, _ := s.lookup(Key(name))
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Key is the environment variable behind name
func Key(name string) string {
	return "FLAG_" + strings.ToUpper(name)
}

// Enabled checks a flag against the process environment
func Enabled(name string) bool {
	return FromEnv().Enabled(name)
}
