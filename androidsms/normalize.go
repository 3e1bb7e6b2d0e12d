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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ctime-style layout used for Date and DateSent.
const DateLayout = "Mon Jan _2 15:04:05 2006"

var (
	addressSeparators = regexp.MustCompile(`[- .]`)
	leadingTrunk      = regexp.MustCompile(`^[+1]*`)
	listTrunk         = regexp.MustCompile(`,[+1]*`)
)

var msgTypeLabels = [...]string{"0", "1 inbox", "2 sent", "3", "4", "5"}

// NormalizeAddress strips '-', ' ' and '.' from a single address or a
// comma-joined address list, then strips any run of '+' and '1' at the start
// of the string and right after each comma.
func NormalizeAddress(address string) string {
	address = addressSeparators.ReplaceAllString(address, "")
	address = leadingTrunk.ReplaceAllString(address, "")
	return listTrunk.ReplaceAllString(address, ",")
}

// JoinAddresses normalizes each non-empty address and joins them with commas.
func JoinAddresses(addresses ...string) string {
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if a = NormalizeAddress(a); a != "" {
			out = append(out, a)
		}
	}
	return strings.Join(out, ",")
}

// FormatDate converts a millisecond Unix timestamp to DateLayout in local time
// followed by " UTC". "" and "0" mean no timestamp and yield "".
//
// The value is rendered in local time but labelled UTC. Existing CSV consumers
// depend on that output, so the label is kept as is.
func FormatDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return "", nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", &Error{Kind: KindDecode, Record: -1, Err: fmt.Errorf("malformed timestamp %q", raw)}
	}
	return time.UnixMilli(ms).Local().Format(DateLayout) + " UTC", nil
}

// FormatMsgType maps a message type code to its label. Codes outside 0-5 are
// a KindRange error.
func FormatMsgType(code int) (string, error) {
	if code < 0 || code >= len(msgTypeLabels) {
		return "", &Error{Kind: KindRange, Record: -1, Err: fmt.Errorf("message type %d out of range 0-%d", code, len(msgTypeLabels)-1)}
	}
	return msgTypeLabels[code], nil
}

// ParseMsgType is FormatMsgType for the textual codes found in backups.
// A missing code is treated as 0.
func ParseMsgType(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FormatMsgType(0)
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return "", &Error{Kind: KindRange, Record: -1, Err: fmt.Errorf("malformed message type %q", raw)}
	}
	return FormatMsgType(code)
}
