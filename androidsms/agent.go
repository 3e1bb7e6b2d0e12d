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
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// AttachmentDirName is the directory created next to the output file for
// extracted MMS attachments.
const AttachmentDirName = "mms-attachments"

// AttachmentStore writes attachment blobs as attachment-<id>.<ext> files. The
// directory is created on first use.
type AttachmentStore struct {
	Dir string

	ready bool
}

// NewAttachmentStore returns a store rooted at outputDir/mms-attachments.
func NewAttachmentStore(outputDir string) *AttachmentStore {
	return &AttachmentStore{Dir: filepath.Join(outputDir, AttachmentDirName)}
}

// AttachmentExtension derives a file extension from a MIME type. image/* and
// video/* map to jpg and mp4, anything else uses the part after the first '/'
// reduced to letters and digits.
func AttachmentExtension(mimeType string) string {
	switch mimeType {
	case "image/*":
		return "jpg"
	case "video/*":
		return "mp4"
	}
	if i := strings.Index(mimeType, "/"); i >= 0 {
		mimeType = mimeType[i+1:]
	}
	ext := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, mimeType)
	if ext == "" {
		return "bin"
	}
	return ext
}

// Write stores data for attachment id and returns the file path.
func (s *AttachmentStore) Write(id int64, ext string, data []byte) (path string, err error) {
	if !s.ready {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return "", newError(KindIO, s.Dir, fmt.Errorf("unable to create attachment directory: %w", err))
		}
		s.ready = true
	}

	path = filepath.Join(s.Dir, "attachment-"+strconv.FormatInt(id, 10)+"."+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", newError(KindIO, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = newError(KindIO, path, cerr)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return "", newError(KindIO, path, err)
	}
	return path, nil
}

// ParseAgentMMSSMS reads a Magnet Forensics Acquire agent_mmssms.db.
//
// Every attachment in the data table is extracted before any message is
// emitted, because a message body references its attachment by _id. A failed
// attachment write aborts the whole file.
func ParseAgentMMSSMS(ctx context.Context, src *Source, sink RecordSink) (Stats, error) {
	var stats Stats
	if src.Attachments == nil {
		return stats, newError(KindIO, src.Path(), errors.New("no attachment store configured"))
	}

	db, err := openDatabase(ctx, src.Path())
	if err != nil {
		return stats, err
	}
	defer db.Close()

	withAttachment, err := extractAttachments(ctx, db, src)
	if err != nil {
		return stats, err
	}
	stats.Attachments = len(withAttachment)

	rows, err := db.QueryContext(ctx, `SELECT _id, body, address, type, date, date_sent FROM mmssms`)
	if err != nil {
		return stats, newError(KindDatabase, src.Path(), fmt.Errorf("unable to query mmssms: %w", err))
	}
	defer rows.Close()

	for i := 0; rows.Next(); i++ {
		var id int64
		var body, address, msgType, date, sent sql.NullString
		if err := rows.Scan(&id, &body, &address, &msgType, &date, &sent); err != nil {
			return stats, newError(KindDatabase, src.Path(), fmt.Errorf("unable to read mmssms row %d: %w", i, err))
		}
		_, attached := withAttachment[id]
		msg, err := agentMessage(src.Name, id, attached, body, address, msgType, date, sent)
		if err != nil {
			src.skip(&stats, i, withContext(err, KindDecode, src.Path(), i))
			continue
		}
		if err := sink.Write(msg); err != nil {
			return stats, err
		}
		stats.Messages++
	}
	if err := rows.Err(); err != nil {
		return stats, newError(KindDatabase, src.Path(), err)
	}
	return stats, nil
}

// extractAttachments writes every row of the data table to the attachment
// store and returns the set of _id values that had one.
func extractAttachments(ctx context.Context, db *sql.DB, src *Source) (map[int64]struct{}, error) {
	rows, err := db.QueryContext(ctx, `SELECT _id, attachment_type, attachment_data FROM data`)
	if err != nil {
		return nil, newError(KindDatabase, src.Path(), fmt.Errorf("unable to query data: %w", err))
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var (
			id       int64
			mimeType sql.NullString
			data     []byte
		)
		if err := rows.Scan(&id, &mimeType, &data); err != nil {
			return nil, newError(KindDatabase, src.Path(), fmt.Errorf("unable to read data row: %w", err))
		}
		path, err := src.Attachments.Write(id, AttachmentExtension(nullString(mimeType)), data)
		if err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
		src.logger().Debug("wrote attachment", "id", id, "file", path)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindDatabase, src.Path(), err)
	}
	return ids, nil
}

func agentMessage(source string, id int64, attached bool, body, address, msgType, date, sent sql.NullString) (*Message, error) {
	formattedDate, err := FormatDate(nullString(date))
	if err != nil {
		return nil, err
	}
	formattedSent, err := FormatDate(nullString(sent))
	if err != nil {
		return nil, err
	}
	label, err := ParseMsgType(nullString(msgType))
	if err != nil {
		return nil, err
	}
	text := nullString(body)
	if attached {
		text += " (attachment " + strconv.FormatInt(id, 10) + ")"
	}
	normalized := NormalizeAddress(nullString(address))
	return &Message{
		Address:    normalized,
		Date:       formattedDate,
		DateSent:   formattedSent,
		Recipients: normalized,
		Body:       text,
		MsgType:    label,
		Source:     source,
	}, nil
}
