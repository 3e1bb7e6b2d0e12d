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
	"fmt"
)

// ParseLogsDB reads the logs table of a Samsung logsprovider logs.db. The
// number column is used both as address and recipient, and geocoded_location
// is copied verbatim.
func ParseLogsDB(ctx context.Context, src *Source, sink RecordSink) (Stats, error) {
	var stats Stats
	db, err := openDatabase(ctx, src.Path())
	if err != nil {
		return stats, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT number, name, date, type, geocoded_location, m_content FROM logs`)
	if err != nil {
		return stats, newError(KindDatabase, src.Path(), fmt.Errorf("unable to query logs: %w", err))
	}
	defer rows.Close()

	for i := 0; rows.Next(); i++ {
		var number, name, date, msgType, location, content sql.NullString
		if err := rows.Scan(&number, &name, &date, &msgType, &location, &content); err != nil {
			return stats, newError(KindDatabase, src.Path(), fmt.Errorf("unable to read logs row %d: %w", i, err))
		}
		msg, err := logsMessage(src.Name, number, name, date, msgType, location, content)
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

func logsMessage(source string, number, name, date, msgType, location, content sql.NullString) (*Message, error) {
	formattedDate, err := FormatDate(nullString(date))
	if err != nil {
		return nil, err
	}
	label, err := ParseMsgType(nullString(msgType))
	if err != nil {
		return nil, err
	}
	address := NormalizeAddress(nullString(number))
	return &Message{
		Address:    address,
		Name:       nullString(name),
		Date:       formattedDate,
		Recipients: address,
		Body:       nullString(content),
		MsgType:    label,
		Location:   nullString(location),
		Source:     source,
	}, nil
}
