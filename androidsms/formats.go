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
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
)

// Source is one matched file handed to a parser.
type Source struct {
	Dir         string
	Name        string
	Attachments *AttachmentStore
	Logger      *slog.Logger
}

// Path returns the full path of the source file.
func (s *Source) Path() string {
	return filepath.Join(s.Dir, s.Name)
}

func (s *Source) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// skip logs a record that could not be normalized.
func (s *Source) skip(stats *Stats, record int, err error) {
	stats.Skipped++
	s.logger().Warn("skipping record", "record", record, "kind", KindOf(err), "err", err)
}

// Stats counts what a parser produced from one file.
type Stats struct {
	Messages    int
	Skipped     int
	Attachments int
}

func (s *Stats) add(o Stats) {
	s.Messages += o.Messages
	s.Skipped += o.Skipped
	s.Attachments += o.Attachments
}

// ParserFunc reads src and writes normalized messages to sink.
type ParserFunc func(ctx context.Context, src *Source, sink RecordSink) (Stats, error)

// Format describes one recognized on-disk source format.
type Format struct {
	ID          string
	Description string
	Pattern     *regexp.Regexp
	// Locations are directory substrings the file is expected under. Empty
	// means the file may be anywhere.
	Locations []string
	Parse     ParserFunc
}

// ExpectedLocation reports whether dir contains one of the format's location hints.
func (f *Format) ExpectedLocation(dir string) bool {
	if len(f.Locations) == 0 {
		return true
	}
	for _, loc := range f.Locations {
		if strings.Contains(dir, loc) {
			return true
		}
	}
	return false
}

// Registry is an ordered list of formats. The first matching entry wins.
type Registry []*Format

// Detect returns the first format whose pattern matches name, or nil.
func (r Registry) Detect(name string) *Format {
	for _, f := range r {
		if f.Pattern.MatchString(name) {
			return f
		}
	}
	return nil
}

// NotableLocations are Android package directories that usually hold messages.
var NotableLocations = []string{
	"com.android.providers.telephony",
	"com.sec.android.providers.logsprovider",
	"com.google.android.apps.messaging",
	"com.android.messaging",
	"com.android.mms",
}

// DefaultRegistry returns the built-in formats in dispatch order.
func DefaultRegistry() Registry {
	return Registry{
		{
			ID:          "mmssmsdb",
			Description: "mmssms.db main sms database",
			Pattern:     regexp.MustCompile(`^mmssms\.db$`),
			Locations:   []string{"com.android.providers.telephony"},
			Parse:       notImplemented,
		},
		{
			ID:          "smsbackup",
			Description: "sms_backups",
			Pattern:     regexp.MustCompile(`^\d+_(sms|mms)_backup$`),
			Locations:   []string{"com.android.providers.telephony"},
			Parse:       ParseSMSBackup,
		},
		{
			ID:          "logsdb",
			Description: "logs.db sms snippets",
			Pattern:     regexp.MustCompile(`^logs\.db$`),
			Locations:   []string{"com.sec.android.providers.logsprovider"},
			Parse:       ParseLogsDB,
		},
		{
			ID:          "magnet_agent_mmssms",
			Description: "Magnet Forensics agent live agent_mmssms.db database",
			Pattern:     regexp.MustCompile(`^agent_mmssms\.db$`),
			Locations:   []string{"agent"},
			Parse:       ParseAgentMMSSMS,
		},
		{
			ID:          "bugle",
			Description: "New generation bugle_db sms database",
			Pattern:     regexp.MustCompile(`^bugle_db$`),
			Locations:   []string{"com.google.android.apps.messaging", "com.android.messaging"},
			Parse:       notImplemented,
		},
		{
			ID:          "calllog",
			Description: "calllog",
			Pattern:     regexp.MustCompile(`^calllog\.db$`),
			Parse:       notImplemented,
		},
		{
			ID:          "ab",
			Description: "Android AB backup",
			Pattern:     regexp.MustCompile(`.*\.[aA][bB]$`),
			Parse:       extractFirst("Andriller"),
		},
		{
			ID:          "tar",
			Description: "Android backup in TAR archive",
			Pattern:     regexp.MustCompile(`.*\.[tT][aA][rR]$`),
			Parse:       extractFirst("7-Zip"),
		},
	}
}
