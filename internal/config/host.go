package config

import (
	"strings"
	"time"
)

// HostConfig holds per-host overrides for a single gopher server.
// This allows customizing traversal behavior per host, for example a
// longer delay for a server known to be slow.
type HostConfig struct {
	// Delay overrides the global inter-fetch delay for this host.
	// A duration string such as "500ms" or "2s". Empty means unset.
	Delay string `yaml:"delay,omitempty"`

	// MaxDepth overrides the global recursion depth for this host.
	// Nil means unset; zero is a real value meaning the root and its
	// direct children only.
	MaxDepth *int `yaml:"maxDepth,omitempty"`

	// AcceptPattern overrides the global accept pattern for this host.
	AcceptPattern string `yaml:"accept,omitempty"`

	// RejectPattern overrides the global reject pattern for this host.
	RejectPattern string `yaml:"reject,omitempty"`
}

// DelayDuration parses the Delay field. An empty Delay returns zero
// with no error, meaning the global delay stays in effect.
func (hc HostConfig) DelayDuration() (time.Duration, error) {
	if hc.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(hc.Delay)
}

// File represents the structure of the .gopherdl configuration file.
type File struct {
	// Hosts maps host names to their overrides. Keys may be written
	// with or without the "gopher://" prefix.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults contains overrides applied to every host unless the
	// host's own entry sets the field.
	Defaults HostConfig `yaml:"defaults,omitempty"`
}

// GetHostConfig returns the configuration for a host, merging the
// host's entry over the defaults. The host is looked up as given and
// with a "gopher://" prefix, so either key style works in the file.
func (cf *File) GetHostConfig(host string) HostConfig {
	result := cf.Defaults

	hc, ok := cf.Hosts[host]
	if !ok {
		hc, ok = cf.Hosts["gopher://"+strings.TrimPrefix(host, "gopher://")]
	}
	if !ok {
		return result
	}

	if hc.Delay != "" {
		result.Delay = hc.Delay
	}
	if hc.MaxDepth != nil {
		result.MaxDepth = hc.MaxDepth
	}
	if hc.AcceptPattern != "" {
		result.AcceptPattern = hc.AcceptPattern
	}
	if hc.RejectPattern != "" {
		result.RejectPattern = hc.RejectPattern
	}
	return result
}
