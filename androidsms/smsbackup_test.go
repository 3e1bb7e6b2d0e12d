package androidsms

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupRecordBody(t *testing.T) {
	tests := []struct {
		name, body, mmsBody, want string
	}{
		{"both", "hi", "there", "hi; there"},
		{"body only", "hi", "", "hi"},
		{"mms only", "", "there", "there"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := BackupRecord{Body: tt.body, MMSBody: tt.mmsBody}
			msg, err := rec.Message("1_sms_backup")
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.Body)
		})
	}
}

func TestDecodeBackupRawDeflate(t *testing.T) {
	data := rawDeflate(t, `[{"address":"+11234567890","body":"hello","date":"1577836800000","type":1}]`)
	records, err := DecodeBackup(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, flexString("+11234567890"), records[0].Address)
	assert.Equal(t, flexString("1577836800000"), records[0].Date)
	assert.Equal(t, flexString("1"), records[0].Type)
}

func TestDecodeBackupZlib(t *testing.T) {
	data := zlibDeflate(t, `[{"address":"5551234","date":1577836800000,"date_sent":null,"type":"2"}]`)
	records, err := DecodeBackup(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, flexString("1577836800000"), records[0].Date)
	assert.Equal(t, flexString(""), records[0].DateSent)
	assert.Equal(t, flexString("2"), records[0].Type)
}

func TestDecodeBackupInvalid(t *testing.T) {
	_, err := DecodeBackup(strings.NewReader("definitely not deflate"))
	require.Error(t, err)
	assert.Equal(t, KindDecode, KindOf(err))

	_, err = DecodeBackup(bytes.NewReader(rawDeflate(t, `{"not":"a list"`)))
	require.Error(t, err)
	assert.Equal(t, KindDecode, KindOf(err))
}

func TestParseSMSBackup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "com.android.providers.telephony", "d_f")
	path := writeFile(t, dir, "000001_mms_backup", rawDeflate(t, `[
		{"address":"+1 212-555-1212","body":"hi","mms_body":"there","date":"1577836800000","date_sent":"0","type":2,
		 "recipients":["+13105550000",""],"mms_addresses":[{"address":"+1.415.555.0000","type":151},{"address":""}]},
		{"address":"5550000","body":"second","type":1}
	]`))

	var sink collector
	stats, err := ParseSMSBackup(context.Background(), newSource(path, nil), &sink)
	require.NoError(t, err)
	assert.Equal(t, Stats{Messages: 2}, stats)
	require.Len(t, sink.messages, 2)

	first := sink.messages[0]
	assert.Equal(t, "2125551212", first.Address)
	assert.Equal(t, "hi; there", first.Body)
	assert.Equal(t, "3105550000,4155550000", first.Recipients)
	assert.Equal(t, "2 sent", first.MsgType)
	assert.True(t, strings.HasSuffix(first.Date, " UTC"))
	assert.Equal(t, "", first.DateSent)
	assert.Equal(t, "000001_mms_backup", first.Source)
	assert.Equal(t, "", first.Name)
	assert.Equal(t, "", first.Location)

	second := sink.messages[1]
	assert.Equal(t, "second", second.Body)
	assert.Equal(t, "", second.Date)
	assert.Equal(t, "1 inbox", second.MsgType)
	assert.Equal(t, "", second.Recipients)
}

func TestParseSMSBackupSkipsOutOfRangeType(t *testing.T) {
	path := writeFile(t, t.TempDir(), "7_sms_backup", rawDeflate(t, `[
		{"address":"1","body":"bad","type":9},
		{"address":"2","body":"good","type":1}
	]`))

	var sink collector
	stats, err := ParseSMSBackup(context.Background(), newSource(path, nil), &sink)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Messages)
	assert.Equal(t, 1, stats.Skipped)
	require.Len(t, sink.messages, 1)
	assert.Equal(t, "good", sink.messages[0].Body)
}

func TestParseSMSBackupCorrupt(t *testing.T) {
	path := writeFile(t, t.TempDir(), "3_sms_backup", []byte{0x00, 0x01, 0x02})

	var sink collector
	_, err := ParseSMSBackup(context.Background(), newSource(path, nil), &sink)
	require.Error(t, err)
	assert.Equal(t, KindDecode, KindOf(err))
	assert.Contains(t, err.Error(), path)
	assert.Empty(t, sink.messages)
}
