// Command thermoctl submits a thermal image with patient details to the
// analysis service from a terminal and saves the PDF report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/thermalytics/thermoinsights/backend/config"
	"github.com/thermalytics/thermoinsights/backend/model"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
	"github.com/thermalytics/thermoinsights/backend/report"
	"github.com/thermalytics/thermoinsights/backend/service"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	configFile := flag.String("config", "", "Load configuration from YAML file")
	endpoint := flag.String("endpoint", "", "Analysis service URL (default from config)")
	imagePath := flag.String("image", "", "Thermal image to analyze")
	outDir := flag.String("out", ".", "Directory the PDF report is written to")
	noInput := flag.Bool("no-input", false, "Do not prompt; every field must be given as a flag")
	noReport := flag.Bool("no-report", false, "Skip writing the PDF report")
	showRaw := flag.Bool("raw", false, "Print the raw analysis response")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	showVersion := flag.Bool("version", false, "Show version")

	values := make(map[string]*string, len(model.PatientFields))
	for _, f := range model.PatientFields {
		values[f.Key] = flag.String(flagName(f.Key), "", f.Label)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("thermoctl %s\n", version)
		os.Exit(0)
	}

	logger.Init(&logger.Config{Level: *logLevel, Format: "text", Output: os.Stderr})

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *endpoint != "" {
		cfg.Analysis.Endpoint = *endpoint
	}

	meta := model.NewPatientMetadata()
	for key, v := range values {
		meta[key] = *v
	}

	if !*noInput {
		if err := promptForm(meta, imagePath); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				os.Exit(130)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var savers []service.Saver
	if !*noReport {
		savers = append(savers, service.FileSaver{Dir: *outDir})
	}
	exporter := service.NewExporter(report.NewLayout(&cfg.Report), cfg.Report.Filename, savers...)
	analyzer := service.NewAnalysisService(&cfg.Analysis)

	code := run(ctx, runOptions{
		analyzer:  analyzer,
		exporter:  exporter,
		cfg:       cfg,
		meta:      meta,
		imagePath: *imagePath,
		showRaw:   *showRaw,
		export:    !*noReport,
	})
	stop()
	os.Exit(code)
}

type runOptions struct {
	analyzer  service.Analyzer
	exporter  *service.Exporter
	cfg       *config.Config
	meta      model.PatientMetadata
	imagePath string
	showRaw   bool
	export    bool
}

// run submits one analysis and returns the process exit code
func run(ctx context.Context, opts runOptions) int {
	session := service.NewSession(opts.analyzer, opts.cfg.Analysis.Timeout(), opts.exporter)
	defer session.Close(context.Background())

	if err := session.Form.SetFields(opts.meta); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err.Error()))
		return 2
	}

	if opts.imagePath != "" {
		data, err := os.ReadFile(opts.imagePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, renderError(fmt.Sprintf("Cannot read %s: %v", opts.imagePath, err)))
			return 2
		}
		if err := session.Form.SelectFile(opts.imagePath, data); err != nil {
			fmt.Fprintln(os.Stderr, renderError(service.UserMessage(err)))
			return 2
		}
	}

	ticket, err := session.Submit(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(service.UserMessage(err)))
		return 2
	}

	fmt.Println(renderView(session.View(), opts.showRaw))

	if _, err := ticket.Wait(ctx); err != nil {
		fmt.Fprintln(os.Stderr, renderError("Cancelled."))
		return 130
	}

	view := session.View()
	fmt.Println(renderView(view, opts.showRaw))
	if !view.CanExport {
		return 1
	}

	if !opts.export {
		return 0
	}
	out, err := session.Export(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(fmt.Sprintf("Failed to save report: %v", err)))
		return 1
	}
	for _, loc := range out.Locations {
		fmt.Println(renderSaved(loc))
	}
	return 0
}

// promptForm asks for every field, prefilled with the flag values
func promptForm(meta model.PatientMetadata, imagePath *string) error {
	answers := make([]string, len(model.PatientFields))
	fields := make([]huh.Field, 0, len(model.PatientFields)+1)

	for i, f := range model.PatientFields {
		answers[i] = meta.Get(f.Key)
		label := f.Label
		fields = append(fields, huh.NewInput().
			Key(f.Key).
			Title(label).
			Value(&answers[i]).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("please fill in %s", label)
				}
				return nil
			}))
	}

	fields = append(fields, huh.NewInput().
		Key("image").
		Title("Thermal Image").
		Description("Path to a PNG, JPEG, GIF, BMP, TIFF or WebP file").
		Value(imagePath).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("please upload a thermal image")
			}
			if _, err := os.Stat(s); err != nil {
				return fmt.Errorf("cannot open %s", s)
			}
			return nil
		}))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	for i, f := range model.PatientFields {
		meta[f.Key] = answers[i]
	}
	return nil
}

// flagName turns a field key into a flag name, e.g. bodyPart -> body-part
func flagName(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
