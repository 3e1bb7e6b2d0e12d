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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// flexString accepts a JSON string, number or null. Backups written by
// different Android builds disagree on whether dates and types are quoted.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = flexString(n.String())
	return nil
}

// BackupRecord is one entry of a telephony provider <n>_sms_backup or
// <n>_mms_backup file.
type BackupRecord struct {
	Address      flexString   `json:"address"`
	Body         string       `json:"body"`
	Date         flexString   `json:"date"`
	DateSent     flexString   `json:"date_sent"`
	Type         flexString   `json:"type"`
	MMSBody      string       `json:"mms_body"`
	Recipients   []flexString `json:"recipients"`
	MMSAddresses []struct {
		Address flexString `json:"address"`
	} `json:"mms_addresses"`
}

// Message normalizes the record. source is the originating file name.
func (r *BackupRecord) Message(source string) (*Message, error) {
	date, err := FormatDate(string(r.Date))
	if err != nil {
		return nil, err
	}
	dateSent, err := FormatDate(string(r.DateSent))
	if err != nil {
		return nil, err
	}
	msgType, err := ParseMsgType(string(r.Type))
	if err != nil {
		return nil, err
	}

	recipients := make([]string, 0, len(r.Recipients)+len(r.MMSAddresses))
	for _, rcpt := range r.Recipients {
		recipients = append(recipients, string(rcpt))
	}
	for _, addr := range r.MMSAddresses {
		recipients = append(recipients, string(addr.Address))
	}

	body := r.Body
	if body != "" && r.MMSBody != "" {
		body += "; " + r.MMSBody
	} else {
		body += r.MMSBody
	}

	return &Message{
		Address:    NormalizeAddress(string(r.Address)),
		Date:       date,
		DateSent:   dateSent,
		Recipients: JoinAddresses(recipients...),
		Body:       body,
		MsgType:    msgType,
		Source:     source,
	}, nil
}

// DecodeBackup inflates a whole backup file and decodes its JSON record list.
// Files are usually zlib streams; bare raw DEFLATE data is accepted as well.
func DecodeBackup(r io.Reader) ([]BackupRecord, error) {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: KindIO, Record: -1, Err: err}
	}
	data, err := inflate(compressed)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Record: -1, Err: fmt.Errorf("unable to decompress: %w", err)}
	}
	var records []BackupRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &Error{Kind: KindDecode, Record: -1, Err: fmt.Errorf("unable to decode records: %w", err)}
	}
	return records, nil
}

func inflate(compressed []byte) ([]byte, error) {
	if hasZlibHeader(compressed) {
		zr, err := zlib.NewReader(bytes.NewReader(compressed))
		if err == nil {
			data, err := io.ReadAll(zr)
			zr.Close()
			if err == nil {
				return data, nil
			}
		}
	}
	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()
	return io.ReadAll(fr)
}

// hasZlibHeader checks for a deflate CMF/FLG pair as described in RFC 1950.
func hasZlibHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	cmf, flg := b[0], b[1]
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

// ParseSMSBackup reads a compressed telephony backup and writes one message per
// record, in file order. No deduplication is done across backup files.
func ParseSMSBackup(ctx context.Context, src *Source, sink RecordSink) (Stats, error) {
	var stats Stats
	f, err := os.Open(src.Path())
	if err != nil {
		return stats, newError(KindIO, src.Path(), err)
	}
	defer f.Close()

	records, err := DecodeBackup(f)
	if err != nil {
		return stats, withContext(err, KindDecode, src.Path(), -1)
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		msg, err := records[i].Message(src.Name)
		if err != nil {
			src.skip(&stats, i, withContext(err, KindDecode, src.Path(), i))
			continue
		}
		if err := sink.Write(msg); err != nil {
			return stats, err
		}
		stats.Messages++
	}
	return stats, nil
}
