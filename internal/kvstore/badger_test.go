package kvstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"megasena-analyzer/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err, "open badger store")
	t.Cleanup(func() { store.Close() })
	return store
}

func testDraw(t *testing.T, seq uint, numbers []int) models.Draw {
	t.Helper()
	date := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(seq)*3)
	d, err := models.NewDraw(seq, date, numbers)
	require.NoError(t, err)
	return d
}

func TestDrawRoundTrip(t *testing.T) {
	store := openTestStore(t)

	d1 := testDraw(t, 1, []int{1, 2, 3, 4, 5, 6})
	d2 := testDraw(t, 2, []int{10, 20, 30, 40, 50, 60})
	require.NoError(t, store.InsertDraw(d2))
	require.NoError(t, store.InsertDraw(d1))

	draws, err := store.Load()
	require.NoError(t, err)
	require.Len(t, draws, 2)

	// insertion order does not matter, key order does
	require.Equal(t, d1, draws[0])
	require.Equal(t, d2, draws[1])
}

func TestLoadEmpty(t *testing.T) {
	store := openTestStore(t)

	draws, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, draws)
}

func TestLastSequence(t *testing.T) {
	store := openTestStore(t)

	last, err := store.LastSequence()
	require.NoError(t, err)
	require.Equal(t, uint(0), last)

	require.NoError(t, store.InsertDraw(testDraw(t, 7, []int{1, 2, 3, 4, 5, 6})))
	require.NoError(t, store.InsertDraw(testDraw(t, 2700, []int{7, 8, 9, 10, 11, 12})))

	last, err = store.LastSequence()
	require.NoError(t, err)
	require.Equal(t, uint(2700), last)
}

func TestInsertDrawIdempotent(t *testing.T) {
	store := openTestStore(t)

	d := testDraw(t, 5, []int{1, 2, 3, 4, 5, 6})
	require.NoError(t, store.InsertDraw(d))
	require.NoError(t, store.InsertDraw(d))

	draws, err := store.Load()
	require.NoError(t, err)
	require.Len(t, draws, 1)
}

func TestFingerprintChangesOnInsert(t *testing.T) {
	store := openTestStore(t)

	before, err := store.Fingerprint()
	require.NoError(t, err)

	require.NoError(t, store.InsertDraw(testDraw(t, 1, []int{1, 2, 3, 4, 5, 6})))

	after, err := store.Fingerprint()
	require.NoError(t, err)
	require.NotEqual(t, before, after)

	// unchanged content keeps the fingerprint stable
	again, err := store.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, after, again)
}

func TestRunsRoundTripAndReplace(t *testing.T) {
	store := openTestStore(t)

	// no stored runs is empty, not an error
	runs, err := store.LoadRuns(models.MethodWeighted)
	require.NoError(t, err)
	require.Empty(t, runs)

	first := []models.BacktestRun{
		{
			Method:    models.MethodWeighted,
			Generated: models.CandidateSet{1, 2, 3, 4, 5, 6},
			Matches:   []int{0, 2, 1},
			Timestamp: time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			Method:    models.MethodWeighted,
			Generated: models.CandidateSet{7, 8, 9, 10, 11, 12},
			Matches:   []int{1, 1, 4},
			Timestamp: time.Date(2024, time.March, 1, 10, 1, 0, 0, time.UTC),
		},
	}
	require.NoError(t, store.SaveRuns(models.MethodWeighted, first))

	runs, err = store.LoadRuns(models.MethodWeighted)
	require.NoError(t, err)
	require.Equal(t, first, runs)

	// saving again replaces, never appends
	second := first[:1]
	require.NoError(t, store.SaveRuns(models.MethodWeighted, second))

	runs, err = store.LoadRuns(models.MethodWeighted)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	// other methods are untouched
	other, err := store.LoadRuns(models.MethodAllTime)
	require.NoError(t, err)
	require.Empty(t, other)
}
