package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"profiler/config"
	"profiler/internal/domain/entity"
	"profiler/internal/infra/export"
	"profiler/internal/infra/logparse"
	"profiler/internal/usecase/impl"
)

// Supported subcommands:
// - extract: Parse log files, rebuild profiles, export them and print the report
// - report:  Parse log files and print the extraction report only

const (
	defaultInputs = "logs/product-management.log,structured-logs/application-logs.txt"
	defaultOutput = "extracted-profiles"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.New()
	if err != nil {
		logger.Warn("config not loaded, using built-in defaults", slog.Any("error", err))
		cfg = nil
	}
	inputDefault, outputDefault := flagDefaults(cfg)

	extractCmd := flag.NewFlagSet("extract", flag.ExitOnError)
	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)

	// extract parameters
	extractInput := extractCmd.String("input", inputDefault, "Comma-separated log files to parse")
	extractOutput := extractCmd.String("output", outputDefault, "Output directory for extracted profile JSON files")

	// report parameters
	reportInput := reportCmd.String("input", inputDefault, "Comma-separated log files to parse")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch os.Args[1] {
	case "extract":
		_ = extractCmd.Parse(os.Args[2:])
		err = runExtract(ctx, logger, splitInputs(*extractInput), *extractOutput, true)
	case "report":
		_ = reportCmd.Parse(os.Args[2:])
		err = runExtract(ctx, logger, splitInputs(*reportInput), "", false)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runExtract parses the given log files, rebuilds one profile per user
// and prints the extraction report. When exportDir is set the profiles
// are also serialized there.
func runExtract(ctx context.Context, logger *slog.Logger, inputs []string, exportDir string, doExport bool) error {
	parser := logparse.NewParser(logger)
	entries, skipped := parser.ParseFiles(inputs)
	records := logparse.Records(entries)

	logger.Info("parsed operation records",
		slog.Int("entries", len(entries)),
		slog.Int("records", len(records)),
		slog.Int("skippedLines", skipped))

	extractor := impl.NewExtractorService(logger)
	profiles, err := extractor.ExtractProfiles(ctx, records)
	if err != nil {
		return err
	}

	if doExport && len(profiles) > 0 {
		exporter, err := export.NewJSONExporter(exportDir, "extracted", logger)
		if err != nil {
			return err
		}
		all := make([]*entity.Profile, 0, len(profiles))
		for _, profile := range profiles {
			all = append(all, profile)
		}
		if _, err := exporter.ExportAll(ctx, all); err != nil {
			logger.Warn("profile export incomplete", slog.Any("error", err))
		}
	}

	fmt.Println(extractor.Report(profiles))

	return nil
}

// flagDefaults derives the flag default values from the loaded
// configuration, falling back to the built-in defaults when the config
// is unavailable or a section is empty.
func flagDefaults(cfg *config.Config) (inputs, outputDir string) {
	inputs = defaultInputs
	outputDir = defaultOutput

	if cfg == nil {
		return inputs, outputDir
	}

	if cfg.LogParse != nil && len(cfg.LogParse.Files) > 0 {
		inputs = strings.Join(cfg.LogParse.Files, ",")
	}
	if cfg.Export != nil && strings.TrimSpace(cfg.Export.ExtractedDir) != "" {
		outputDir = cfg.Export.ExtractedDir
	}

	return inputs, outputDir
}

func splitInputs(raw string) []string {
	parts := strings.Split(raw, ",")
	inputs := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			inputs = append(inputs, trimmed)
		}
	}

	return inputs
}

func printUsage() {
	fmt.Println("Usage: extract <subcommand> [options]")
	fmt.Println()
	fmt.Println("Subcommands:")
	fmt.Println("  extract   Parse log files, rebuild user profiles and export them")
	fmt.Println("  report    Parse log files and print the extraction report only")
	fmt.Println()
	fmt.Println("Run 'extract <subcommand> -h' for options.")
}
