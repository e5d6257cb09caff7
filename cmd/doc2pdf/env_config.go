package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
)

// Environment variable names.
const (
	envConfigPath = "DOC2PDF_CONFIG"
	envBackend    = "DOC2PDF_BACKEND"
	envSoffice    = "DOC2PDF_SOFFICE"
	envTimeout    = "DOC2PDF_TIMEOUT"
	envPageSize   = "DOC2PDF_PAGE_SIZE"
	envLogLevel   = "DOC2PDF_LOG_LEVEL"
)

const envPrefix = "DOC2PDF_"

// ErrInvalidEnv is returned when a DOC2PDF_* variable holds an unusable value.
var ErrInvalidEnv = errors.New("invalid environment variable")

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string        // DOC2PDF_CONFIG: config file path
	Backend    string        // DOC2PDF_BACKEND: auto, office, browser
	Soffice    string        // DOC2PDF_SOFFICE: LibreOffice binary
	Timeout    time.Duration // DOC2PDF_TIMEOUT: conversion timeout
	PageSize   string        // DOC2PDF_PAGE_SIZE: letter, a4, legal
}

// knownEnvVars lists valid DOC2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envConfigPath: true,
	envBackend:    true,
	envSoffice:    true,
	envTimeout:    true,
	envPageSize:   true,
	envLogLevel:   true,
}

// loadEnvConfig reads the DOC2PDF_* variables through lookup.
// A malformed timeout or backend is an error, not ignored.
func loadEnvConfig(lookup func(string) (string, bool)) (*envConfig, error) {
	get := func(name string) string {
		v, _ := lookup(name)
		return strings.TrimSpace(v)
	}

	cfg := &envConfig{
		ConfigPath: get(envConfigPath),
		Backend:    get(envBackend),
		Soffice:    get(envSoffice),
		PageSize:   get(envPageSize),
	}

	if cfg.Backend != "" {
		if _, err := doc2pdf.ParseBackend(cfg.Backend); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEnv, envBackend, err)
		}
	}

	if timeout := get(envTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, envTimeout, timeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidEnv, envTimeout, d)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized DOC2PDF_* variables.
// Helps catch typos like DOC2PDF_TIMOUT.
func warnUnknownEnvVars(logger *slog.Logger, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable (typo?)", "name", name)
		}
	}
}

// applyEnvConfig overlays set environment values onto cfg.
// Environment wins over the config file, which wins over defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Backend != "" {
		cfg.Backend = env.Backend
	}
	if env.Soffice != "" {
		cfg.Office.Binary = env.Soffice
	}
	if env.Timeout > 0 {
		cfg.Timeout = env.Timeout.String()
	}
	if env.PageSize != "" {
		cfg.Page.Size = env.PageSize
	}
}
