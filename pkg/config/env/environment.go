// Package env implements config.Environment by reading the process
// environment, the way the teacher's pkg/config/env package does.
package env

import (
	"os"
	"strconv"
	"time"
)

// Environment reads typed values out of os.Environ, with a fixed
// prefix (e.g. "DESIM_") applied to every key.
type Environment struct {
	prefix string
}

// New creates an Environment that looks up prefix+key for every call.
func New(prefix string) *Environment {
	return &Environment{prefix: prefix}
}

func (e *Environment) lookup(key string) (string, bool) {
	return os.LookupEnv(e.prefix + key)
}

func (e *Environment) GetString(key string) string {
	v, _ := e.lookup(key)
	return v
}

func (e *Environment) GetInt(key string) int {
	v, ok := e.lookup(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func (e *Environment) GetBool(key string) bool {
	v, ok := e.lookup(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

func (e *Environment) GetDuration(key string) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
