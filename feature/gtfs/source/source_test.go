package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"transit-catalog/core/reconcile"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func parseAgency(row Row) (reconcile.Record, error) {
	if _, err := row.Int("agency_id"); err != nil {
		return reconcile.Record{}, err
	}
	return reconcile.Record{
		NaturalKey: row.Get("agency_id"),
		Attributes: map[string]string{"agency_name": row.Get("agency_name")},
	}, nil
}

func TestOpen_ReadsRecordsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "agency.txt", "\xEF\xBB\xBFagency_id,agency_name,agency_url\n1,ACME,http://a\n\n2,\"Beta, Inc\",http://b\n")

	var got []reconcile.Record
	for rec, err := range Open(dir, "agency.txt", []string{"agency_id", "agency_name"}, parseAgency) {
		require.NoError(t, err)
		got = append(got, rec)
	}

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].NaturalKey)
	assert.Equal(t, "ACME", got[0].Attributes["agency_name"])
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, "Beta, Inc", got[1].Attributes["agency_name"])
	assert.Equal(t, 4, got[1].Line)
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing column", "agency_name\nACME\n", "missing column agency_id"},
		{"empty header", "", "missing header"},
		{"empty key", "agency_id,agency_name\n,ACME\n", "line 2"},
		{"non numeric key", "agency_id,agency_name\n1,ACME\nx1,Beta\n", "line 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "agency.txt", tt.content)

			var lastErr error
			for _, err := range Open(dir, "agency.txt", []string{"agency_id", "agency_name"}, parseAgency) {
				if err != nil {
					lastErr = err
				}
			}
			require.Error(t, lastErr)
			assert.ErrorIs(t, lastErr, reconcile.ErrMalformedRecord)
			assert.ErrorContains(t, lastErr, tt.want)
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	for _, err := range Open(t.TempDir(), "routes.txt", nil, parseAgency) {
		assert.ErrorContains(t, err, "routes.txt")
	}
}

func TestOpen_EarlyStop(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "agency.txt", "agency_id,agency_name\n1,A\n2,B\n3,C\n")

	count := 0
	for range Open(dir, "agency.txt", nil, parseAgency) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestRow_Float(t *testing.T) {
	row := NewRow("stops.txt", 7, map[string]string{"stop_lat": " 32.0853 ", "stop_lon": "abc"})

	lat, err := row.Float("stop_lat")
	require.NoError(t, err)
	assert.Equal(t, 32.0853, lat)

	_, err = row.Float("stop_lon")
	assert.ErrorIs(t, err, reconcile.ErrMalformedRecord)
	assert.ErrorContains(t, err, "line 7")
}

func TestSnapshotDate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CalendarFile, "service_id,monday,start_date,end_date\n1,1,20240310,20240401\n2,1,20240301,20240401\n3,0,20240305,20240401\n")

	date, err := SnapshotDate(dir)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), date)
}

func TestSnapshotDate_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CalendarFile, "service_id,start_date\n1,2024-03-01\n")
	_, err := SnapshotDate(dir)
	assert.ErrorIs(t, err, reconcile.ErrMalformedRecord)

	empty := t.TempDir()
	writeFile(t, empty, CalendarFile, "service_id,start_date\n")
	_, err = SnapshotDate(empty)
	assert.ErrorContains(t, err, "no service periods")
}

func TestExtract(t *testing.T) {
	tmp := t.TempDir()
	archive := filepath.Join(tmp, "feed.zip")
	writeZip(t, archive, map[string]string{
		"agency.txt":   "agency_id,agency_name\n1,ACME\n",
		"calendar.txt": "service_id,start_date\n1,20240301\n",
	})

	dest, err := WorkDir(tmp, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "gtfs_20240301_123000"), dest)

	names, err := Extract(context.Background(), archive, dest)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"agency.txt", "calendar.txt"}, names)

	date, err := SnapshotDate(dest)
	require.NoError(t, err)
	assert.Equal(t, 2024, date.Year())
}

func TestExtract_RejectsEscapingEntries(t *testing.T) {
	tmp := t.TempDir()
	archive := filepath.Join(tmp, "evil.zip")
	writeZip(t, archive, map[string]string{"../evil.txt": "x"})

	_, err := Extract(context.Background(), archive, filepath.Join(tmp, "out"))
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(tmp, "evil.txt"))
}
