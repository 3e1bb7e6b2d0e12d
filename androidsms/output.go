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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// MessageOutput writes messages as comma-separated rows under the Headers row.
type MessageOutput struct {
	w     *csv.Writer
	count int
}

func NewMessageOutput(f io.Writer) (*MessageOutput, error) {
	w := csv.NewWriter(f)
	w.UseCRLF = true
	if err := w.Write(Headers); err != nil {
		return nil, err
	}
	return &MessageOutput{w: w}, nil
}

func (o *MessageOutput) Write(msg *Message) error {
	if err := o.w.Write(msg.Row()); err != nil {
		return err
	}
	o.count++
	return nil
}

// Count returns the number of rows written, excluding the header.
func (o *MessageOutput) Count() int {
	return o.count
}

// Flush writes any buffered rows to the underlying writer.
func (o *MessageOutput) Flush() error {
	o.w.Flush()
	return o.w.Error()
}

// CSVFile is a MessageOutput backed by a file it owns.
type CSVFile struct {
	*MessageOutput
	f *os.File
}

// CreateCSVFile creates (or truncates) path and writes the header row.
func CreateCSVFile(path string) (*CSVFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, newError(KindIO, path, fmt.Errorf("unable to create output file: %w", err))
	}
	out, err := NewMessageOutput(f)
	if err != nil {
		_ = f.Close()
		return nil, newError(KindIO, path, err)
	}
	return &CSVFile{MessageOutput: out, f: f}, nil
}

// Close flushes buffered rows and closes the file.
func (c *CSVFile) Close() error {
	flushErr := c.Flush()
	closeErr := c.f.Close()
	if err := errors.Join(flushErr, closeErr); err != nil {
		return newError(KindIO, c.f.Name(), err)
	}
	return nil
}
