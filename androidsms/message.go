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

// Package androidsms recovers SMS/MMS records from unpacked Android device
// backups and normalizes them into a single flat row format.
package androidsms

// Message is one normalized row. Every parser builds a Message from a single
// source record and hands it straight to a RecordSink.
type Message struct {
	Address    string
	Name       string
	Date       string
	DateSent   string
	Recipients string
	Body       string
	MsgType    string
	Location   string
	Source     string
}

// Headers is the header row written by tabular sinks, in field order.
var Headers = []string{
	"Address",
	"Name",
	"Date",
	"Date_sent",
	"Recipients",
	"Body",
	"msgtype",
	"Location",
	"Source",
}

// Row returns the message fields in Headers order.
func (m *Message) Row() []string {
	return []string{
		m.Address,
		m.Name,
		m.Date,
		m.DateSent,
		m.Recipients,
		m.Body,
		m.MsgType,
		m.Location,
		m.Source,
	}
}

// RecordSink accepts normalized messages. Write must not retain msg.
type RecordSink interface {
	Write(msg *Message) error
}

// SinkFunc adapts a function to RecordSink.
type SinkFunc func(msg *Message) error

func (f SinkFunc) Write(msg *Message) error {
	return f(msg)
}

// MultiSink writes every message to each sink in order, stopping at the first failure.
func MultiSink(sinks ...RecordSink) RecordSink {
	return SinkFunc(func(msg *Message) error {
		for _, s := range sinks {
			if err := s.Write(msg); err != nil {
				return err
			}
		}
		return nil
	})
}
