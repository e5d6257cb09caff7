package main

import (
	"fmt"
	"log/slog"
	"strings"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
)

// settings is the resolved configuration for one run.
type settings struct {
	configPath string // file that was loaded, "" when none
	cfg        *config.Config
}

// resolveSettings merges defaults, the optional config file and the
// environment. An explicit DOC2PDF_CONFIG must exist; the per-user default
// location is optional.
func resolveSettings(env *Environment) (*settings, error) {
	envCfg, err := loadEnvConfig(env.LookupEnv)
	if err != nil {
		return nil, err
	}

	var (
		cfg  *config.Config
		path string
	)
	if envCfg.ConfigPath != "" {
		path = envCfg.ConfigPath
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return &settings{configPath: path}, fmt.Errorf("loading config: %w", err)
	}

	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return &settings{configPath: path}, err
	}

	return &settings{configPath: path, cfg: cfg}, nil
}

// options translates the resolved configuration into service options.
func (s *settings) options(logger *slog.Logger) ([]doc2pdf.Option, error) {
	backend, err := doc2pdf.ParseBackend(s.cfg.Backend)
	if err != nil {
		return nil, err
	}

	opts := []doc2pdf.Option{
		doc2pdf.WithBackend(backend),
		doc2pdf.WithLogger(logger),
	}

	timeout, err := s.cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, doc2pdf.WithTimeout(timeout))
	}

	if s.cfg.Office.Binary != "" {
		opts = append(opts, doc2pdf.WithOfficeBinary(s.cfg.Office.Binary))
	}
	if s.cfg.Browser.Binary != "" || s.cfg.Browser.NoSandbox {
		opts = append(opts, doc2pdf.WithBrowserBinary(s.cfg.Browser.Binary, s.cfg.Browser.NoSandbox))
	}
	if page := s.pageSettings(); page != nil {
		opts = append(opts, doc2pdf.WithPage(page))
	}

	return opts, nil
}

// pageSettings returns nil when no page field is configured, leaving the
// renderer defaults in place. Unset fields fall back to the defaults.
func (s *settings) pageSettings() *doc2pdf.PageSettings {
	p := s.cfg.Page
	if p.Size == "" && p.Orientation == "" && p.Margin == 0 {
		return nil
	}

	page := doc2pdf.DefaultPageSettings()
	if p.Size != "" {
		page.Size = strings.ToLower(p.Size)
	}
	if p.Orientation != "" {
		page.Orientation = strings.ToLower(p.Orientation)
	}
	if p.Margin != 0 {
		page.Margin = p.Margin
	}
	return page
}
