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

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteOutput stores messages in the messages table of a SQLite database.
// All rows are written inside one transaction that Commit makes durable.
type SQLiteOutput struct {
	db     *sql.DB
	tx     *sql.Tx
	insert *sql.Stmt
	count  int
}

func NewSQLiteOutput(ctx context.Context, path string) (*SQLiteOutput, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, newError(KindDatabase, path, err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS messages (
			id integer primary key autoincrement,
			address text,
			name text,
			date text,
			date_sent text,
			recipients text,
			body text,
			msgtype text,
			location text,
			source text
		)
	`
	if _, err = db.ExecContext(ctx, query); err != nil {
		db.Close()
		return nil, newError(KindDatabase, path, fmt.Errorf("unable to create messages table: %w", err))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, newError(KindDatabase, path, err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (address, name, date, date_sent, recipients, body, msgtype, location, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, newError(KindDatabase, path, err)
	}

	return &SQLiteOutput{db: db, tx: tx, insert: stmt}, nil
}

func (s *SQLiteOutput) Write(msg *Message) error {
	_, err := s.insert.Exec(
		msg.Address,
		msg.Name,
		msg.Date,
		msg.DateSent,
		msg.Recipients,
		msg.Body,
		msg.MsgType,
		msg.Location,
		msg.Source,
	)
	if err != nil {
		return err
	}
	s.count++
	return nil
}

// Count returns the number of rows inserted so far.
func (s *SQLiteOutput) Count() int {
	return s.count
}

func (s *SQLiteOutput) Commit() error {
	return s.tx.Commit()
}

// Close releases the statement and database. Uncommitted rows are rolled back.
func (s *SQLiteOutput) Close() error {
	stmtErr := s.insert.Close()
	rollbackErr := s.tx.Rollback()
	if errors.Is(rollbackErr, sql.ErrTxDone) {
		rollbackErr = nil
	}
	return errors.Join(stmtErr, rollbackErr, s.db.Close())
}
