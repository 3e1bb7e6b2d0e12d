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

package androidsms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
)

// Scanner walks a folder tree and dispatches every recognized file to its
// format's parser. Files are processed one at a time, in walk order.
type Scanner struct {
	Registry    Registry
	Sink        RecordSink
	Attachments *AttachmentStore
	Logger      *slog.Logger

	// OnMatch, when set, is called before a matched file is parsed.
	OnMatch func(path string, format *Format)
}

// NewScanner returns a Scanner over the default registry.
func NewScanner(sink RecordSink, attachments *AttachmentStore, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		Registry:    DefaultRegistry(),
		Sink:        sink,
		Attachments: attachments,
		Logger:      logger,
	}
}

// sinkGuard remembers the first sink failure so that it can be told apart from
// a parser failure.
type sinkGuard struct {
	sink RecordSink
	err  error
}

func (g *sinkGuard) Write(msg *Message) error {
	if g.err != nil {
		return g.err
	}
	if err := g.sink.Write(msg); err != nil {
		g.err = fmt.Errorf("unable to write output: %w", err)
		return g.err
	}
	return nil
}

// Scan walks root. Per-file failures are logged and recorded in the result;
// the returned error is non-nil only when the walk itself cannot continue
// (unreadable root, output failure, cancelled context).
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	result := newResult(s.Registry)
	guard := &sinkGuard{sink: s.Sink}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return newError(KindIO, path, err)
			}
			s.Logger.Error("unable to read", "path", path, "err", err)
			result.Failures = append(result.Failures, Failure{Path: path, Err: newError(KindIO, path, err)})
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if s.Attachments != nil && path != root && sameDir(path, s.Attachments.Dir) {
				return filepath.SkipDir
			}
			if slices.Contains(NotableLocations, d.Name()) {
				s.Logger.Info("found notable location", "path", path)
			}
			return nil
		}
		result.Files++

		format := s.Registry.Detect(d.Name())
		if format == nil {
			return nil
		}
		return s.dispatch(ctx, format, path, guard, result)
	})
	return result, err
}

func (s *Scanner) dispatch(ctx context.Context, format *Format, path string, guard *sinkGuard, result *Result) error {
	fr := result.Format(format.ID)
	fr.Found = true
	fr.Files++

	dir := filepath.Dir(path)
	if format.ExpectedLocation(dir) {
		s.Logger.Info("found", "format", format.ID, "path", path)
	} else {
		s.Logger.Warn("found outside expected location", "format", format.ID, "path", path, "expected", format.Locations)
	}
	if s.OnMatch != nil {
		s.OnMatch(path, format)
	}

	src := &Source{
		Dir:         dir,
		Name:        filepath.Base(path),
		Attachments: s.Attachments,
		Logger:      s.Logger.With("format", format.ID, "path", path),
	}
	stats, err := format.Parse(ctx, src, guard)
	fr.Stats.add(stats)
	result.Stats.add(stats)

	switch {
	case guard.err != nil:
		return newError(KindIO, path, guard.err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case err != nil:
		fr.Failures++
		result.Failures = append(result.Failures, Failure{Path: path, Format: format.ID, Err: err})
		s.Logger.Error("unable to process file", "format", format.ID, "path", path, "kind", KindOf(err), "err", err)
		return nil
	}
	src.Logger.Info(fmt.Sprintf("%d messages in %s", stats.Messages, src.Name), "skipped", stats.Skipped, "attachments", stats.Attachments)
	return nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// Failure is a file that could not be processed.
type Failure struct {
	Path   string
	Format string
	Err    error
}

// FormatResult is the outcome of one format over a whole run.
type FormatResult struct {
	Format   *Format
	Found    bool
	Files    int
	Failures int
	Stats    Stats
}

// Result summarizes a run. It is owned by the caller once Scan returns.
type Result struct {
	Formats  []*FormatResult
	Files    int
	Stats    Stats
	Failures []Failure
}

func newResult(reg Registry) *Result {
	r := &Result{Formats: make([]*FormatResult, len(reg))}
	for i, f := range reg {
		r.Formats[i] = &FormatResult{Format: f}
	}
	return r
}

// Format returns the entry for the format with the given ID, or nil.
func (r *Result) Format(id string) *FormatResult {
	for _, fr := range r.Formats {
		if fr.Format.ID == id {
			return fr
		}
	}
	return nil
}

// Found returns the formats seen during the run, in registry order.
func (r *Result) Found() []*FormatResult {
	return r.filter(true)
}

// NotFound returns the formats not seen during the run, in registry order.
func (r *Result) NotFound() []*FormatResult {
	return r.filter(false)
}

func (r *Result) filter(found bool) []*FormatResult {
	var out []*FormatResult
	for _, fr := range r.Formats {
		if fr.Found == found {
			out = append(out, fr)
		}
	}
	return out
}

// WriteReport prints the found / not found summary.
func (r *Result) WriteReport(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Found:"); err != nil {
		return err
	}
	for _, fr := range r.Found() {
		if _, err := fmt.Fprintf(w, "    %s\n", fr.Format.Description); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "Not Found:"); err != nil {
		return err
	}
	for _, fr := range r.NotFound() {
		if _, err := fmt.Fprintf(w, "    %s\n", fr.Format.Description); err != nil {
			return err
		}
	}
	return nil
}
