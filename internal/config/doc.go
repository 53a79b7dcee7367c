// Package config provides configuration structures and utilities for
// psinsight. It defines the options for PageSpeed analysis runs, the
// credential resolution rules, and report generation preferences.
package config
