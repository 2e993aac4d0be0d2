package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"golang.org/x/sync/errgroup"

	"workpulse/internal/config"
	"workpulse/internal/dataprocessing"
	"workpulse/internal/exporter"
	"workpulse/internal/files"
	"workpulse/internal/infrastructure"
	"workpulse/internal/services"
	"workpulse/internal/validation"
	"workpulse/pkg/contracts"
	api "workpulse/pkg/contracts/api/v1"
)

const usage = `Usage: workpulse [-config file] <command> [flags]

Commands:
  analyze   analyse roster files or a Google Sheet and write reports
  sample    write a random sample roster
  version   print version information

Run "workpulse <command> -h" for command flags.
`

var errUsage = errors.New("invalid usage")

// cli carries what every subcommand needs
type cli struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "workpulse: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("workpulse", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configFile := global.String("config", "", "YAML config file (defaults to workpulse.yaml or config.yaml if present)")
	if err := global.Parse(args); err != nil {
		return err
	}

	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	c := &cli{
		cfg:    cfg,
		logger: infrastructure.NewLogger(cfg.Logging, stderr),
		stdout: stdout,
		stderr: stderr,
	}

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "analyze":
		return c.analyze(ctx, rest)
	case "sample":
		return c.sample(ctx, rest)
	case "version":
		fmt.Fprintln(stdout, contracts.Build())
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		global.Usage()
		return errUsage
	}
}

// analyze handles "workpulse analyze"
func (c *cli) analyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	outDir := fs.String("out", ".", "output directory for reports")
	formatName := fs.String("format", string(exporter.FormatXLSX), "report format: xlsx | csv | pdf | json")
	workers := fs.Int("workers", runtime.NumCPU(), "number of files analysed concurrently")
	sheetID := fs.String("sheet", "", "Google Sheets spreadsheet ID to analyse instead of files")
	sheetRange := fs.String("range", "", "A1 range to read from the spreadsheet")
	title := fs.String("title", "", "report title (PDF only)")
	fs.Usage = func() {
		fmt.Fprintln(c.stderr, "Usage: workpulse analyze [flags] file|dir...")
		fmt.Fprintln(c.stderr, "       workpulse analyze [flags] -sheet ID [-range A1]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := exporter.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	if *workers < 1 {
		return fmt.Errorf("-workers must be at least 1, got %d", *workers)
	}
	if *sheetID == "" && fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	validator := validation.NewFileValidator(c.logger, c.cfg.Upload.AllowedExtensions, c.cfg.Upload.MaxSizeBytes)
	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		return err
	}
	out := files.NewManager(*outDir, c.logger)

	svc, err := c.newService(ctx, *sheetID != "", format == exporter.FormatPDF)
	if err != nil {
		return err
	}

	if *sheetID != "" {
		ctx = infrastructure.EnsureTraceID(ctx)
		resp, err := svc.AnalyzeSheet(ctx, api.SheetAnalyzeRequest{SpreadsheetID: *sheetID, Range: *sheetRange})
		if err != nil {
			return err
		}
		return c.writeReport(ctx, svc, out, format, *title, resp)
	}

	inputs, err := validator.ExpandInputs(fs.Args())
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no roster files to analyse")
	}

	// One slot per input so a failing file does not stop the others
	failures := make([]error, len(inputs))

	var g errgroup.Group
	g.SetLimit(*workers)
	for i, path := range inputs {
		g.Go(func() error {
			fileCtx := infrastructure.WithTraceID(ctx, infrastructure.NewTraceID())
			resp, err := svc.AnalyzeFile(fileCtx, path)
			if err == nil {
				err = c.writeReport(fileCtx, svc, out, format, *title, resp)
			}
			if err != nil {
				c.logger.ErrorContext(fileCtx, "Analysis failed",
					slog.String("file", path),
					slog.String("error", err.Error()))
				failures[i] = fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	c.logger.InfoContext(ctx, "Batch finished",
		slog.String("out", out.Root()),
		slog.Int("files", len(inputs)),
		slog.Int("failed", failed))
	return errors.Join(failures...)
}

// writeReport renders resp and writes it next to the other reports
func (c *cli) writeReport(ctx context.Context, svc *services.ProductivityService, out *files.Manager, format exporter.Format, title string, resp *api.AnalyzeResponse) error {
	dl, err := svc.Render(ctx, format, title, resp.AnalysisResult)
	if err != nil {
		return err
	}

	path, err := out.WriteUnique(files.ReportName(resp.SourceName, string(format)), dl.Body)
	if err != nil {
		return err
	}

	summary := resp.Summary
	average := "n/a"
	if summary.AverageProductivity != nil {
		average = fmt.Sprintf("%.2f%%", *summary.AverageProductivity)
	}
	fmt.Fprintf(c.stdout, "%s: %d employees, %d productive, %d not productive, average %s -> %s\n",
		resp.SourceName, summary.TotalEmployees, summary.ProductiveCount, summary.NotProductiveCount, average, path)
	return nil
}

// sample handles "workpulse sample"
func (c *cli) sample(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	count := fs.Int("count", c.cfg.Sample.DefaultCount, "number of employees")
	seed := fs.Uint64("seed", 0, "random seed; 0 picks a random one")
	outPath := fs.String("out", "", "output file; .csv writes CSV, anything else XLSX (defaults to sample_employee_data_N.xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format := exporter.FormatXLSX
	if filepath.Ext(*outPath) == ".csv" {
		format = exporter.FormatCSV
	}

	svc, err := c.newService(ctx, false, false)
	if err != nil {
		return err
	}

	var dl *services.Download
	if *seed == 0 {
		dl, err = svc.Sample(ctx, *count, format)
	} else {
		dl, err = svc.SampleWithSeed(ctx, *count, format, *seed)
	}
	if err != nil {
		return err
	}

	// An explicit -out is never replaced; the default name moves aside instead
	var path string
	if *outPath == "" {
		path, err = files.NewManager(".", c.logger).WriteUnique(dl.Filename, dl.Body)
	} else {
		out := files.NewManager(filepath.Dir(*outPath), c.logger)
		if err = out.EnsureDirectory(); err == nil {
			path, err = out.WriteFile(filepath.Base(*outPath), dl.Body)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "wrote %d sample employees to %s\n", *count, path)
	return nil
}

// newService builds the productivity service with only the backends the
// command needs
func (c *cli) newService(ctx context.Context, withSheets, withPDF bool) (*services.ProductivityService, error) {
	deps := services.ProductivityDeps{Logger: c.logger}

	if withSheets {
		if !c.cfg.Sheets.Enabled() {
			return nil, errors.New("sheets credentials are not configured (set WORKPULSE_SHEETS_CREDENTIALS_FILE or WORKPULSE_SHEETS_API_KEY)")
		}
		opts, err := dataprocessing.SheetsClientOptions(c.cfg.Sheets.CredentialsFile, c.cfg.Sheets.APIKey)
		if err != nil {
			return nil, err
		}
		source, err := dataprocessing.NewSheetsSource(ctx, c.logger, c.cfg.Sheets.DefaultRange, opts...)
		if err != nil {
			return nil, err
		}
		deps.Sheets = source
	}

	if withPDF {
		pdf := exporter.NewPDFRenderer(c.cfg.Report.ChromePath, c.cfg.Report.PDFTimeout, c.logger)
		if err := pdf.Available(); err != nil {
			return nil, err
		}
		deps.PDF = pdf
	}

	return services.NewProductivityService(c.cfg, deps)
}
