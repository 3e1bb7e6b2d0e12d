package androidsms

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageOutput(t *testing.T) {
	var buf bytes.Buffer
	out, err := NewMessageOutput(&buf)
	require.NoError(t, err)

	require.NoError(t, out.Write(&Message{
		Address:    "2125551212",
		Body:       `she said "hi, there"` + "\nsecond line",
		MsgType:    "1 inbox",
		Recipients: "2125551212,3105550000",
		Source:     "1_sms_backup",
	}))
	require.NoError(t, out.Flush())
	assert.Equal(t, 1, out.Count())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Headers, records[0])
	assert.Equal(t, []string{"2125551212", "", "", "", "2125551212,3105550000", "she said \"hi, there\"\nsecond line", "1 inbox", "", "1_sms_backup"}, records[1])
}

func TestCSVFileHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sms_backup.csv")
	f, err := CreateCSVFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Address,Name,Date,Date_sent,Recipients,Body,msgtype,Location,Source\r\n", string(data))
}

func TestCreateCSVFileBadPath(t *testing.T) {
	_, err := CreateCSVFile(filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
}

func TestSQLiteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.db")
	out, err := NewSQLiteOutput(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, out.Write(&Message{Address: "5550100", Body: "hello", MsgType: "2 sent", Source: "logs.db"}))
	require.NoError(t, out.Write(&Message{Address: "5550101", Body: "again", MsgType: "1 inbox", Source: "logs.db"}))
	assert.Equal(t, 2, out.Count())
	require.NoError(t, out.Commit())
	require.NoError(t, out.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM messages`).Scan(&count))
	assert.Equal(t, 2, count)

	var body, msgType string
	require.NoError(t, db.QueryRow(`SELECT body, msgtype FROM messages WHERE address = '5550100'`).Scan(&body, &msgType))
	assert.Equal(t, "hello", body)
	assert.Equal(t, "2 sent", msgType)
}

func TestSQLiteOutputRollbackOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.db")
	out, err := NewSQLiteOutput(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, out.Write(&Message{Address: "1"}))
	require.NoError(t, out.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM messages`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestCSVFileCloseTwice(t *testing.T) {
	f, err := CreateCSVFile(filepath.Join(t.TempDir(), "sms_backup.csv"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	err = f.Close()
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
}

func TestSQLiteOutputCloseAfterCommit(t *testing.T) {
	out, err := NewSQLiteOutput(context.Background(), filepath.Join(t.TempDir(), "result.db"))
	require.NoError(t, err)
	require.NoError(t, out.Write(&Message{Address: "1"}))
	require.NoError(t, out.Commit())
	assert.NoError(t, out.Close())
}

func TestMultiSink(t *testing.T) {
	var a, b collector
	sink := MultiSink(&a, &b)
	require.NoError(t, sink.Write(&Message{Body: "x"}))
	assert.Len(t, a.messages, 1)
	assert.Len(t, b.messages, 1)
}
