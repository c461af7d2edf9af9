package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"backend-pathtracker/internal/codec"
	"backend-pathtracker/internal/pathstore"
	"backend-pathtracker/internal/shared/geo"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/require"
	"github.com/tkrajina/gpxgo/gpx"
)

type failingStore struct {
	pathstore.Store
}

func (failingStore) ListAll(context.Context, string) ([]pathstore.SavedPath, error) {
	return nil, &pathstore.StoreError{Op: "list", Err: errors.New("disk gone")}
}

func execute(t *testing.T, store pathstore.Store, args ...string) (subcommands.ExitStatus, string, string) {
	t.Helper()
	fs := flag.NewFlagSet("pathctl", flag.ContinueOnError)
	require.NoError(t, fs.Parse(args))

	cdr := subcommands.NewCommander(fs, "pathctl")
	var out, errw bytes.Buffer
	cdr.Output = &out
	cdr.Error = &errw
	register(cdr)

	e := &env{store: store, out: &out, errw: &errw}
	status := cdr.Execute(context.Background(), e)
	return status, out.String(), errw.String()
}

func seed(t *testing.T, owner string, paths ...geo.Path) (*pathstore.MemoryStore, []string) {
	t.Helper()
	store := pathstore.NewMemoryStore()
	ids := make([]string, 0, len(paths))
	for i, p := range paths {
		encoded, err := codec.Encode(p)
		require.NoError(t, err)
		id, err := store.Append(context.Background(), owner, encoded, time.Date(2024, 9, 12, 10, i, 0, 0, time.UTC))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return store, ids
}

func TestListText(t *testing.T) {
	store, ids := seed(t, "t1",
		geo.Path{{Latitude: 1, Longitude: 2}},
		geo.Path{{Latitude: 3, Longitude: 4}, {Latitude: 5, Longitude: 6}},
	)
	_, err := store.Append(context.Background(), "t1", []byte("garbage"), time.Date(2024, 9, 12, 11, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	status, out, _ := execute(t, store, "list", "-owner", "t1")
	require.Equal(t, subcommands.ExitSuccess, status)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, ids[0]+" - 2024-09-12T10:00:00Z - 1 points", lines[0])
	require.Equal(t, ids[1]+" - 2024-09-12T10:01:00Z - 2 points", lines[1])
	require.True(t, strings.HasSuffix(lines[2], "unreadable"))
}

func TestListJSON(t *testing.T) {
	store, ids := seed(t, "t1", geo.Path{}, geo.Path{{Latitude: 1, Longitude: 1}})

	status, out, _ := execute(t, store, "list", "-owner", "t1", "-format", "json")
	require.Equal(t, subcommands.ExitSuccess, status)

	var got []pathstore.PathSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	require.Equal(t, ids[0], got[0].ID)
	require.Equal(t, 0, got[0].Points)
	require.True(t, got[0].Valid)
	require.Equal(t, 1, got[1].Points)
}

func TestListScopedByOwner(t *testing.T) {
	store, _ := seed(t, "t1", geo.Path{{Latitude: 1, Longitude: 1}})

	status, out, _ := execute(t, store, "list", "-owner", "t2")
	require.Equal(t, subcommands.ExitSuccess, status)
	require.Empty(t, out)
}

func TestListInvalidFormat(t *testing.T) {
	status, _, errOut := execute(t, pathstore.NewMemoryStore(), "list", "-format", "csv")
	require.Equal(t, subcommands.ExitFailure, status)
	require.Contains(t, errOut, "Invalid format 'csv'")
}

func TestListStoreFailure(t *testing.T) {
	status, _, errOut := execute(t, failingStore{}, "list")
	require.Equal(t, subcommands.ExitFailure, status)
	require.Contains(t, errOut, "disk gone")
}

func TestShow(t *testing.T) {
	store, ids := seed(t, "", geo.Path{{Latitude: 24.7136, Longitude: 46.6753}, {Latitude: -90, Longitude: 180}})

	status, out, _ := execute(t, store, "show", ids[0])
	require.Equal(t, subcommands.ExitSuccess, status)
	require.Equal(t, "24.7136,46.6753\n-90,180\n", out)
}

func TestShowUsageAndMissing(t *testing.T) {
	store := pathstore.NewMemoryStore()

	status, _, _ := execute(t, store, "show")
	require.Equal(t, subcommands.ExitUsageError, status)

	status, _, errOut := execute(t, store, "show", "nope")
	require.Equal(t, subcommands.ExitFailure, status)
	require.Contains(t, errOut, pathstore.ErrNotFound.Error())
}

func TestShowUnreadable(t *testing.T) {
	store := pathstore.NewMemoryStore()
	id, err := store.Append(context.Background(), "", []byte(`["1,2","x"]`), time.Now())
	require.NoError(t, err)

	status, out, errOut := execute(t, store, "show", id)
	require.Equal(t, subcommands.ExitFailure, status)
	require.Empty(t, out)
	require.Contains(t, errOut, "unreadable")
}

func TestExportToFile(t *testing.T) {
	store, ids := seed(t, "t1", geo.Path{{Latitude: 1, Longitude: 2}, {Latitude: 3, Longitude: 4}})
	target := filepath.Join(t.TempDir(), "path.gpx")

	status, out, _ := execute(t, store, "export", "-owner", "t1", "-output", target, ids[0])
	require.Equal(t, subcommands.ExitSuccess, status)
	require.Contains(t, out, "Exported 2 points")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	g, err := gpx.ParseBytes(data)
	require.NoError(t, err)
	require.Equal(t, 2, g.GetTrackPointsNo())
}

func TestExportToStdout(t *testing.T) {
	store, ids := seed(t, "t1", geo.Path{{Latitude: 1, Longitude: 2}})

	status, out, _ := execute(t, store, "export", "-owner", "t1", ids[0])
	require.Equal(t, subcommands.ExitSuccess, status)

	g, err := gpx.ParseBytes([]byte(out))
	require.NoError(t, err)
	require.Equal(t, 1, g.GetTrackPointsNo())
}

func TestExportWrongOwner(t *testing.T) {
	store, ids := seed(t, "t1", geo.Path{{Latitude: 1, Longitude: 2}})

	status, _, _ := execute(t, store, "export", "-owner", "t2", ids[0])
	require.Equal(t, subcommands.ExitFailure, status)
}

func TestDelete(t *testing.T) {
	store, ids := seed(t, "t1", geo.Path{{Latitude: 1, Longitude: 2}})

	status, out, _ := execute(t, store, "delete", "-owner", "t1", ids[0])
	require.Equal(t, subcommands.ExitSuccess, status)
	require.Contains(t, out, "Deleted "+ids[0])

	_, err := store.Get(context.Background(), "t1", ids[0])
	require.ErrorIs(t, err, pathstore.ErrNotFound)

	status, _, _ = execute(t, store, "delete", "-owner", "t1", ids[0])
	require.Equal(t, subcommands.ExitFailure, status)
}
