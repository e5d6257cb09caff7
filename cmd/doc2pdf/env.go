package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	doc2pdf "github.com/alnah/go-doc2pdf"
)

// Converter is the conversion capability used by the CLI.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
	Close() error
}

// Compile-time interface implementation check.
var _ Converter = (*doc2pdf.Service)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout       io.Writer
	Stderr       io.Writer
	LookupEnv    func(string) (string, bool)
	Environ      func() []string
	Logger       *slog.Logger
	NewConverter func(opts ...doc2pdf.Option) Converter
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		LookupEnv: os.LookupEnv,
		Environ:   os.Environ,
		Logger:    newLogger(os.Stderr, os.Getenv(envLogLevel)),
		NewConverter: func(opts ...doc2pdf.Option) Converter {
			return doc2pdf.New(opts...)
		},
	}
}
