package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
	"github.com/alnah/go-doc2pdf/internal/hints"
)

const (
	defaultProgramName = "doc2pdf"
	usageFormat        = "Usage: %s input_file output_file\n"
	errorPrefix        = "Error converting file: "
)

// runMain validates the arguments, runs one conversion and returns the
// process exit code. It never calls os.Exit.
func runMain(args []string, env *Environment) int {
	if len(args) != 3 {
		fmt.Fprintf(env.Stdout, usageFormat, programName(args))
		return ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	configPath, err := run(ctx, args[1], args[2], env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "%s%v%s\n", errorPrefix, err, hintFor(err, configPath))
	}
	return exitCodeFor(err)
}

// run converts inputPath to outputPath. It returns the config file used,
// if any, so the caller can point at it in hints.
func run(ctx context.Context, inputPath, outputPath string, env *Environment) (string, error) {
	warnUnknownEnvVars(env.Logger, env.Environ())

	s, err := resolveSettings(env)
	if err != nil {
		path := ""
		if s != nil {
			path = s.configPath
		}
		return path, err
	}
	if s.configPath != "" {
		env.Logger.Debug("loaded config", "path", s.configPath)
	}

	opts, err := s.options(env.Logger)
	if err != nil {
		return s.configPath, err
	}

	conv := env.NewConverter(opts...)
	defer func() {
		if cerr := conv.Close(); cerr != nil {
			env.Logger.Warn("closing converter", "error", cerr)
		}
	}()

	return s.configPath, conv.Convert(ctx, inputPath, outputPath)
}

// programName returns the base name of argv[0].
func programName(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return defaultProgramName
	}
	return filepath.Base(args[0])
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, configPath string) string {
	switch {
	case errors.Is(err, doc2pdf.ErrOfficeNotFound):
		return hints.ForOfficeNotFound()
	case errors.Is(err, doc2pdf.ErrOfficeConversion):
		return hints.ForOfficeConversion()
	case errors.Is(err, doc2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, doc2pdf.ErrOutputDir), errors.Is(err, doc2pdf.ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, config.ErrConfigNotFound) && configPath != "":
		return hints.ForConfigNotFound(configPath)
	default:
		return ""
	}
}
