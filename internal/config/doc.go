// Package config provides configuration structures and utilities for
// gopherdl. It defines the download and traversal options, per-host
// overrides loaded from the optional config file, and report output
// preferences.
package config
