package snapshot_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/procman/model/process"
	"github.com/viant/procman/service/dao"
	"github.com/viant/procman/service/dao/snapshot"
	"github.com/viant/procman/service/dao/snapshot/fs"
	"github.com/viant/procman/service/dao/snapshot/memory"
)

func sample(id, domain string, takenAt time.Time) *snapshot.Snapshot {
	a := process.New(1, 0x1000)
	b := process.New(2, 0x2000)
	b.SetState(process.StateRunning)
	return &snapshot.Snapshot{
		ID:       id,
		Domain:   domain,
		Capacity: 8,
		Entries:  []process.Record{a.Record(), b.Record()},
		Current:  snapshot.IDOf(b),
		Previous: snapshot.IDOf(a),
		TakenAt:  takenAt,
	}
}

func TestSnapshotDAO(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "procman-snapshot")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	ctx := context.Background()
	fsService, err := fs.New(ctx, afs.New(), tempDir, nil)
	require.NoError(t, err)

	var testCases = []struct {
		description string
		service     dao.Service[string, snapshot.Snapshot]
	}{
		{description: "memory", service: memory.New()},
		{description: "fs", service: fsService},
	}

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, testCase := range testCases {
		srv := testCase.service
		require.NoError(t, srv.Save(ctx, sample("s2", "cpu0", base.Add(time.Second))), testCase.description)
		require.NoError(t, srv.Save(ctx, sample("s1", "cpu0", base)), testCase.description)
		require.NoError(t, srv.Save(ctx, sample("s3", "cpu1", base.Add(2*time.Second))), testCase.description)

		loaded, err := srv.Load(ctx, "s1")
		require.NoError(t, err, testCase.description)
		assert.Equal(t, "cpu0", loaded.Domain, testCase.description)
		require.Len(t, loaded.Entries, 2, testCase.description)
		assert.Equal(t, process.Address(0x2000), loaded.Entries[1].Entry, testCase.description)
		assert.Equal(t, process.StateRunning, loaded.Entries[1].State, testCase.description)
		require.NotNil(t, loaded.Current, testCase.description)
		assert.Equal(t, process.ID(2), *loaded.Current, testCase.description)
		assert.Nil(t, loaded.Idle, testCase.description)

		all, err := srv.List(ctx)
		require.NoError(t, err, testCase.description)
		require.Len(t, all, 3, testCase.description)
		assert.Equal(t, []string{"s1", "s2", "s3"}, []string{all[0].ID, all[1].ID, all[2].ID}, testCase.description)

		cpu0, err := srv.List(ctx, dao.NewParameter("Domain", "cpu0"))
		require.NoError(t, err, testCase.description)
		assert.Len(t, cpu0, 2, testCase.description)

		require.NoError(t, srv.Delete(ctx, "s1"), testCase.description)
		_, err = srv.Load(ctx, "s1")
		assert.ErrorIs(t, err, dao.ErrNotFound, testCase.description)
		assert.ErrorIs(t, srv.Delete(ctx, "s1"), dao.ErrNotFound, testCase.description)

		assert.ErrorIs(t, srv.Save(ctx, nil), dao.ErrNilEntity, testCase.description)
		assert.ErrorIs(t, srv.Save(ctx, &snapshot.Snapshot{}), dao.ErrInvalidID, testCase.description)
	}
}
