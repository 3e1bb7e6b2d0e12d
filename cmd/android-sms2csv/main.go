/*
android-sms2csv: recover SMS/MMS messages from Android backups

Copyright (c) 2018 Dan O'Day <d@4n68r.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package main for the android-sms2csv command.
// This tool recovers SMS/MMS messages from an unpacked Android backup into a CSV file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/danzek/android-sms2csv/androidsms"
	"github.com/danzek/android-sms2csv/internal/config"
	"github.com/danzek/android-sms2csv/internal/logger"
	"github.com/danzek/android-sms2csv/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	folder     string
	output     string
	sqlite     string
	cli        bool
	gui        bool
	auto       bool
	logLevel   string
	logFormat  string
	noProgress bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "android-sms2csv",
		Short: "Extract SMS/MMS messages from an unpacked Android backup to CSV",
		Long: `Scans a folder holding an unpacked Android backup and writes every SMS/MMS
message it can recover to one CSV file. Supported sources:
  com.android.providers.telephony/d_f/<n>_(sms|mms)_backup
  com.sec.android.providers.logsprovider/logs.db
  Magnet Forensics Acquire agent_mmssms.db
mmssms.db, bugle_db and calllog.db are detected and reported but not parsed yet.
TAR and AB archives must be unpacked first (7-Zip, Andriller or similar).
MMS attachments are extracted to mms-attachments next to the output file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &opts)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Logging)
			if err != nil {
				return err
			}

			if useGUI(cfg.Mode) {
				res, err := ui.RunForm(cfg.Folder, cfg.Output)
				if err != nil {
					if errors.Is(err, ui.ErrCancelled) {
						return nil
					}
					return err
				}
				cfg.Folder, cfg.Output = res.Folder, res.Output
			}
			return execute(cmd.Context(), cmd.OutOrStdout(), cfg, log)
		},
	}

	opts.bind(cmd)

	return cmd
}

// bind registers the command line flags on cmd.
func (o *options) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML config file")
	f.StringVarP(&o.folder, "folder", "f", ".", "source folder to scan for backup files")
	f.StringVarP(&o.output, "output", "o", "sms_backup.csv", "output CSV file")
	f.StringVar(&o.sqlite, "sqlite", "", "also write messages to this SQLite database")
	f.BoolVar(&o.cli, "cli", false, "use command line options")
	f.BoolVar(&o.gui, "gui", false, "ask for folder and output interactively")
	f.BoolVar(&o.auto, "auto", false, "pick cli or gui depending on whether stdin is a terminal (default)")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&o.logFormat, "log-format", "", "log format: text, json, logfmt")
	f.BoolVar(&o.noProgress, "no-progress", false, "do not show a progress bar")
	cmd.MarkFlagsMutuallyExclusive("cli", "gui", "auto")
}

// resolveConfig layers explicitly set flags over the config file and environment.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("folder") {
		cfg.Folder = opts.folder
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("sqlite") {
		cfg.SQLite = opts.sqlite
	}
	switch {
	case opts.cli:
		cfg.Mode = config.ModeCLI
	case opts.gui:
		cfg.Mode = config.ModeGUI
	case opts.auto:
		cfg.Mode = config.ModeAuto
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	if opts.noProgress {
		cfg.Progress = false
	}
	return cfg, cfg.Validate()
}

func useGUI(mode string) bool {
	switch mode {
	case config.ModeCLI:
		return false
	case config.ModeGUI:
		return true
	}
	fd := os.Stdin.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// plainReport reports whether the summary should be printed without styling:
// when w is not a terminal or logs are machine readable.
func plainReport(w io.Writer, cfg *config.Config) bool {
	if cfg.Logging.Format == "json" {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// execute runs one scan of cfg.Folder into cfg.Output and prints the summary to w.
func execute(ctx context.Context, w io.Writer, cfg *config.Config, log *slog.Logger) (err error) {
	start := time.Now()

	if info, statErr := os.Stat(cfg.Folder); statErr != nil || !info.IsDir() {
		return fmt.Errorf("invalid source folder: %s", cfg.Folder)
	}
	outputDir := filepath.Dir(cfg.Output)
	fmt.Fprintf(w, "Scanning %s\n", cfg.Folder)
	fmt.Fprintf(w, "Saving to %s in %s\n", cfg.Output, outputDir)

	out, err := NewStreamingOutput(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("unable to close output: %w", closeErr))
		}
	}()

	scanner := androidsms.NewScanner(out, androidsms.NewAttachmentStore(outputDir), log)
	if out.pb != nil {
		scanner.OnMatch = func(path string, format *androidsms.Format) {
			out.pb.Describe(format.ID + " " + filepath.Base(path))
		}
	}
	result, scanErr := scanner.Scan(ctx, cfg.Folder)
	if err := out.Finish(); err != nil && scanErr == nil {
		scanErr = err
	}
	if result != nil {
		if plainReport(w, cfg) {
			fmt.Fprintln(w)
			if err := result.WriteReport(w); err != nil {
				return err
			}
		} else {
			fmt.Fprint(w, ui.RenderReport(result))
		}
		fmt.Fprintf(w, "\n%-10d messages written\n", out.csv.Count())
		if out.sqlite != nil {
			fmt.Fprintf(w, "%-10d rows inserted into %s\n", out.sqlite.Count(), cfg.SQLite)
		}
		if result.Stats.Skipped > 0 {
			fmt.Fprintf(w, "%-10d records skipped\n", result.Stats.Skipped)
		}
		if result.Stats.Attachments > 0 {
			fmt.Fprintf(w, "%-10d attachments extracted\n", result.Stats.Attachments)
		}
	}
	if scanErr != nil {
		return scanErr
	}

	fmt.Fprintf(w, "\nCompleted in %.2f seconds.\n", time.Since(start).Seconds())
	fmt.Fprintf(w, "Output saved to %s\n", cfg.Output)
	return nil
}

// StreamingOutput fans each message out to the CSV file, the optional SQLite
// database and the progress bar.
type StreamingOutput struct {
	csv    *androidsms.CSVFile
	sqlite *androidsms.SQLiteOutput
	sink   androidsms.RecordSink
	pb     *progressbar.ProgressBar

	closeFuncs []func() error
}

func NewStreamingOutput(ctx context.Context, cfg *config.Config) (*StreamingOutput, error) {
	var closeFuncs []func() error
	defer func() {
		for _, closeFunc := range closeFuncs {
			_ = closeFunc()
		}
	}()

	csvFile, err := androidsms.CreateCSVFile(cfg.Output)
	if err != nil {
		return nil, err
	}
	closeFuncs = append(closeFuncs, csvFile.Close)

	result := &StreamingOutput{csv: csvFile, sink: csvFile}
	if cfg.SQLite != "" {
		db, err := androidsms.NewSQLiteOutput(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		closeFuncs = append(closeFuncs, db.Close)
		result.sqlite = db
		result.sink = androidsms.MultiSink(csvFile, db)
	}
	if cfg.Progress {
		result.pb = progressbar.Default(-1, "messages")
		progressbar.OptionSetItsString("msg")(result.pb)
	}

	result.closeFuncs = closeFuncs
	// clear closeFuncs so that they are not called in the defer
	closeFuncs = nil
	return result, nil
}

func (s *StreamingOutput) Write(msg *androidsms.Message) error {
	if err := s.sink.Write(msg); err != nil {
		return err
	}
	if s.pb != nil {
		_ = s.pb.Add(1)
	}
	return nil
}

// Finish commits the SQLite transaction and flushes the CSV file.
func (s *StreamingOutput) Finish() error {
	if s.pb != nil {
		_ = s.pb.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if s.sqlite != nil {
		if err := s.sqlite.Commit(); err != nil {
			return fmt.Errorf("unable to commit sqlite output: %w", err)
		}
	}
	return s.csv.Flush()
}

// Close releases the outputs in reverse order of creation and returns every
// failure joined.
func (s *StreamingOutput) Close() error {
	var errs []error
	for i := len(s.closeFuncs) - 1; i >= 0; i-- {
		errs = append(errs, s.closeFuncs[i]())
	}
	return errors.Join(errs...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
