// Package config resolves where the CLI reads its optional YAML settings.
//
// Every CLI flag can be set, in increasing precedence, from the YAML file,
// from its environment variable, or on the command line. Keys in the file
// are dotted paths, e.g.
//
//	lru:
//	  capacity: 1024
//	ttl:
//	  duration: 30s
package config

import (
	"os"
	"path/filepath"
)

// EnvPath overrides the config file location.
const EnvPath = "MEMOCACHE_CONFIG"

// Path returns the config file path: $MEMOCACHE_CONFIG if set, otherwise
// <UserConfigDir>/memocache/config.yaml. The file need not exist; a missing
// file simply contributes no values. Returns "" if no location can be
// resolved.
func Path() string {
	if p, ok := os.LookupEnv(EnvPath); ok && p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, "memocache", "config.yaml")
}
