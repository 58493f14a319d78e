// Command froc computes FROC curves for a dataset of probability maps or
// ranked detections and writes CSV tables, charts and optionally a SQLite
// run record.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"

	"github.com/fcalvet/froc/internal/config"
	"github.com/fcalvet/froc/internal/froc"
	"github.com/fcalvet/froc/internal/froc/dataset"
	"github.com/fcalvet/froc/internal/froc/report"
	"github.com/fcalvet/froc/internal/froc/storage/sqlite"
	"github.com/fcalvet/froc/internal/fsutil"
	"github.com/fcalvet/froc/internal/monitoring"
	"github.com/fcalvet/froc/internal/version"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	datasetPath string
	mode        string
	outDir      string
	dbPath      string
	name        string
	rangeSpec   string
	envFile     string
	png         bool
	html        bool
	debug       bool
	console     bool
	version     bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fset := flag.NewFlagSet("froc", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&o.configPath, "config", "", "Path to evaluation config JSON (defaults to "+config.DefaultConfigPath+" when present)")
	fset.StringVar(&o.datasetPath, "dataset", "", "Path to dataset JSON (.json, .json.gz or .json.zst)")
	fset.StringVar(&o.mode, "mode", "", "Evaluation mode: 'sweep' (threshold sweep over probability maps) or 'rank' (rank cutoffs over ranked detections)")
	fset.StringVar(&o.outDir, "out", "", "Output directory for CSV and chart files")
	fset.StringVar(&o.dbPath, "db", "", "SQLite database to record the run in (optional)")
	fset.StringVar(&o.name, "name", "", "Run name used for output files (defaults to the dataset name)")
	fset.StringVar(&o.rangeSpec, "range", "", "Threshold range as low:high (defaults to the normalised value range)")
	fset.StringVar(&o.envFile, "env", ".env", "Environment file loaded before applying FROC_* overrides")
	fset.BoolVar(&o.png, "png", true, "Write a PNG chart")
	fset.BoolVar(&o.html, "html", false, "Write an interactive HTML chart")
	fset.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fset.BoolVar(&o.console, "console", true, "Human-readable log output")
	fset.BoolVar(&o.version, "version", false, "Print version and exit")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, fsutil.OSFileSystem{}); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		monitoring.Logger().Error().Err(err).Msg("froc failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, fsys fsutil.FileSystem) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.version {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := loadConfig(ctx, o)
	if err != nil {
		return err
	}

	level := cfg.GetLogLevel()
	if o.debug {
		level = "debug"
	}
	if err := monitoring.Init(monitoring.Options{Level: level, Console: o.console, Out: stderr}); err != nil {
		return err
	}
	log := monitoring.Logger()

	if o.datasetPath == "" {
		return errors.New("-dataset is required")
	}
	ds, err := dataset.Load(o.datasetPath)
	if err != nil {
		return err
	}
	name := o.name
	if name == "" {
		name = ds.Name
	}
	log.Info().
		Str("dataset", o.datasetPath).
		Int("samples", len(ds.Samples)).
		Str("mode", cfg.GetMode()).
		Msg("evaluating")

	ev, err := evaluate(ctx, cfg, ds, name)
	if err != nil {
		return err
	}

	outDir := cfg.GetOutputDir()
	if err := fsys.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	written, err := writeOutputs(fsys, outDir, name, ev, o, cfg)
	if err != nil {
		return err
	}
	for _, path := range written {
		log.Info().Str("path", path).Msg("wrote output")
	}

	if dbPath := cfg.GetDBPath(); dbPath != "" {
		runID, err := recordRun(ctx, dbPath, name, cfg, len(ds.Samples), ev.summary)
		if err != nil {
			return err
		}
		log.Info().Str("run_id", runID).Str("db", dbPath).Msg("recorded run")
	}
	return nil
}

// loadConfig layers the config file, environment and flags, in that order.
func loadConfig(ctx context.Context, o *options) (*config.EvalConfig, error) {
	cfg := config.EmptyEvalConfig()
	path := o.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err == nil {
			path = config.DefaultConfigPath
		}
	}
	if path != "" {
		loaded, err := config.LoadEvalConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(ctx); err != nil {
		return nil, err
	}

	if o.mode != "" {
		cfg.Mode = &o.mode
	}
	if o.outDir != "" {
		cfg.OutputDir = &o.outDir
	}
	if o.dbPath != "" {
		cfg.DBPath = &o.dbPath
	}
	if o.rangeSpec != "" {
		r, err := froc.ParseThresholdRange(o.rangeSpec)
		if err != nil {
			return nil, fmt.Errorf("parse -range: %w", err)
		}
		cfg.RangeLow, cfg.RangeHigh = &r.Low, &r.High
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// evaluation is the mode-independent view of a finished run.
type evaluation struct {
	key     string
	summary []froc.SummaryRow
	curve   report.Curve
	sens    *froc.Table
	fp      *froc.Table
	writeTo func(*report.CSVWriter) error
}

func evaluate(ctx context.Context, cfg *config.EvalConfig, ds *dataset.Dataset, name string) (*evaluation, error) {
	gt, err := ds.GroundTruths()
	if err != nil {
		return nil, err
	}
	ids := ds.IDs()

	switch cfg.GetMode() {
	case config.ModeRank:
		res, err := froc.RankSweep(ctx, ds.Ranked(), gt, cfg.RankParams(ids))
		if err != nil {
			return nil, err
		}
		return &evaluation{
			key:     "rank",
			summary: res.Summary(),
			curve:   report.CurveFromRank(name, res),
			sens:    res.SensitivityTable(),
			fp:      res.FPTable(),
			writeTo: func(w *report.CSVWriter) error { return w.WriteRank(res) },
		}, nil
	default:
		maps, err := ds.Maps()
		if err != nil {
			return nil, err
		}
		res, err := froc.Sweep(ctx, maps, gt, cfg.SweepParams(ids))
		if err != nil {
			return nil, err
		}
		return &evaluation{
			key:     "threshold",
			summary: res.Summary(),
			curve:   report.CurveFromSweep(name, res),
			sens:    res.SensitivityTable(),
			fp:      res.FPTable(),
			writeTo: func(w *report.CSVWriter) error { return w.WriteSweep(res) },
		}, nil
	}
}

// writeOutputs writes the CSV files and charts and returns their paths.
func writeOutputs(fsys fsutil.FileSystem, dir, name string, ev *evaluation, o *options, cfg *config.EvalConfig) ([]string, error) {
	summaryPath := fsutil.OutputPath(dir, name, "_summary.csv")
	rawPath := fsutil.OutputPath(dir, name, "_raw.csv")
	if err := writeCSV(fsys, summaryPath, rawPath, ev); err != nil {
		return nil, err
	}
	written := []string{summaryPath, rawPath}

	tables := []struct {
		suffix string
		table  *froc.Table
	}{
		{"_sensitivity.csv", ev.sens},
		{"_fp.csv", ev.fp},
	}
	for _, t := range tables {
		path := fsutil.OutputPath(dir, name, t.suffix)
		if err := writeTable(fsys, path, ev.key, t.table); err != nil {
			return nil, err
		}
		written = append(written, path)
	}

	title := fmt.Sprintf("FROC %s", name)
	if o.png {
		path := fsutil.OutputPath(dir, name, ".png")
		if err := report.SavePNG(fsys, path, title, ev.curve); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	if o.html {
		path := fsutil.OutputPath(dir, name, ".html")
		opts := report.HTMLOptions{Title: title, AssetsHost: cfg.GetAssetsHost()}
		if err := report.SaveHTML(fsys, path, opts, ev.curve); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeCSV(fsys fsutil.FileSystem, summaryPath, rawPath string, ev *evaluation) error {
	summary, err := fsys.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", summaryPath, err)
	}
	raw, err := fsys.Create(rawPath)
	if err != nil {
		summary.Close()
		return fmt.Errorf("create %s: %w", rawPath, err)
	}

	w := report.NewCSVWriter(summary, raw)
	err = ev.writeTo(w)
	if err == nil {
		err = w.Flush()
	}
	if cerr := summary.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", summaryPath, cerr)
	}
	if cerr := raw.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", rawPath, cerr)
	}
	return err
}

func writeTable(fsys fsutil.FileSystem, path, key string, t *froc.Table) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteTable(f, key, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// recordRun stores the summary curve and returns the new run ID.
func recordRun(ctx context.Context, dbPath, name string, cfg *config.EvalConfig, samples int, summary []froc.SummaryRow) (string, error) {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	params, err := sonic.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	run := &sqlite.Run{
		Name:            name,
		Mode:            cfg.GetMode(),
		SampleCount:     samples,
		AllowedDistance: cfg.GetAllowedDistance(),
		ParamsJSON:      params,
		Points:          summary,
	}
	if err := store.InsertRun(ctx, run); err != nil {
		return "", err
	}
	return run.RunID, nil
}
