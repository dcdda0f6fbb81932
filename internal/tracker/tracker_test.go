// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tracker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejzpr/affinity-mcp/internal/affection"
	"github.com/tejzpr/affinity-mcp/internal/locking"
	"github.com/tejzpr/affinity-mcp/internal/store"
)

var testTime = time.Unix(1_700_000_000, 0)

func newTestTracker(t *testing.T, s store.Store, mutate func(*Settings), opts ...Option) *Tracker {
	t.Helper()
	settings := DefaultSettings()
	if mutate != nil {
		mutate(&settings)
	}
	opts = append([]Option{WithClock(func() time.Time { return testTime })}, opts...)
	return New(s, settings, opts...)
}

// plainStore hides the Versioned and Lister methods of the memory store
type plainStore struct {
	inner *store.MemoryStore
}

func (p plainStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	return p.inner.Get(ctx, scope, key)
}

func (p plainStore) Set(ctx context.Context, scope, key, value string) error {
	return p.inner.Set(ctx, scope, key, value)
}

// racingStore lets another writer sneak in before the first n
// compare-and-set writes
type racingStore struct {
	*store.MemoryStore
	mu     sync.Mutex
	races  int
	writes int
}

func (r *racingStore) SetIfVersion(ctx context.Context, scope, key, value string, version int64) error {
	r.mu.Lock()
	r.writes++
	race := r.races > 0
	if race {
		r.races--
	}
	r.mu.Unlock()

	if race {
		current, _, _ := r.MemoryStore.Get(ctx, scope, key)
		if current == "" {
			rec := affection.NewRecord("alice", "Alice", 0, testTime.Unix())
			current, _ = affection.MarshalRecord(rec)
		}
		_ = r.MemoryStore.Set(ctx, scope, key, current)
	}
	return r.MemoryStore.SetIfVersion(ctx, scope, key, value, version)
}

// failingStore fails every operation
type failingStore struct{}

var errBackend = errors.New("backend down")

func (failingStore) Get(context.Context, string, string) (string, bool, error) {
	return "", false, errBackend
}

func (failingStore) Set(context.Context, string, string, string) error {
	return errBackend
}

func TestGetOrCreate(t *testing.T) {
	s := store.NewMemoryStore()
	tr := newTestTracker(t, s, func(st *Settings) { st.DefaultAffection = 30 })
	ctx := context.Background()

	rec, err := tr.GetOrCreate(ctx, "chat-1", "user_123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 30, rec.AffectionValue)
	assert.Equal(t, testTime.Unix(), rec.FirstMetTime)
	assert.Equal(t, testTime.Unix(), rec.LastInteractionTime)

	// Persisted under the character's store key
	raw, found, err := s.Get(ctx, "chat-1", "affection_user_123")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, raw, `"character_name":"Alice"`)

	// Second call returns the stored record, name unchanged
	again, err := tr.GetOrCreate(ctx, "chat-1", "user_123", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.CharacterName)
}

func TestGetOrCreate_DefaultScope(t *testing.T) {
	s := store.NewMemoryStore()
	tr := newTestTracker(t, s, func(st *Settings) { st.DefaultScope = "lobby" })

	_, err := tr.GetOrCreate(context.Background(), "", "c1", "C")
	require.NoError(t, err)

	_, found, err := s.Get(context.Background(), "lobby", "affection_c1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestInvalidArguments(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := tr.GetOrCreate(ctx, "s", "", "X")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = tr.RecordEvent(ctx, "s", "c1", "C", 5, affection.EventPositive, "", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = tr.GetHistory(ctx, "s", "", 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = tr.GetBondInfo(ctx, "s", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = tr.ResetCharacter(ctx, "s", "", "why")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRecordEvent_ThanksThenHelp(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	res, err := tr.RecordEvent(ctx, "chat-1", "user_123", "Alice", 5, affection.EventPositive, "thanks", "finished a task")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 5, res.NewAffection)
	assert.False(t, res.TierChanged)
	assert.Equal(t, affection.TierAcquaintance, res.NewTier)
	assert.Equal(t, "Acquaintance", res.NewTierLabel)
	assert.Equal(t, []string{"first_meet", "shared_laugh"}, res.UnlockedBonds)

	res, err = tr.RecordEvent(ctx, "chat-1", "user_123", "Alice", 10, affection.EventPositive, "helped", "")
	require.NoError(t, err)
	assert.Equal(t, 15, res.NewAffection)
	assert.True(t, res.TierChanged)
	assert.Equal(t, affection.TierFriend, res.NewTier)
	assert.Equal(t, []string{"deep_conversation"}, res.UnlockedBonds)

	rec, err := tr.GetOrCreate(ctx, "chat-1", "user_123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 15, rec.TotalPositive)
	assert.Len(t, rec.Events, 2)
}

func TestRecordEvent_ClampsAndFloors(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	res, err := tr.RecordEvent(ctx, "s", "c1", "C", 75, affection.EventPositive, "huge", "")
	require.NoError(t, err)
	assert.Equal(t, 20, res.NewAffection)

	for i := 0; i < 40; i++ {
		res, err = tr.RecordEvent(ctx, "s", "c1", "C", -3, affection.EventNegative, "annoyed", "")
		require.NoError(t, err)
	}
	assert.Equal(t, -100, res.NewAffection)
	assert.Equal(t, affection.TierEnemy, res.NewTier)

	history, err := tr.GetHistory(ctx, "s", "c1", 100)
	require.NoError(t, err)
	assert.Len(t, history, 20)
}

func TestRecordEvent_BondsDisabled(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), func(st *Settings) { st.EnableBonds = false })
	ctx := context.Background()

	res, err := tr.RecordEvent(ctx, "s", "c1", "C", 20, affection.EventPositive, "gift", "")
	require.NoError(t, err)
	assert.NotNil(t, res.UnlockedBonds)
	assert.Empty(t, res.UnlockedBonds)

	status, err := tr.Status(ctx, "s", "c1", "C")
	require.NoError(t, err)
	assert.Empty(t, status.UnlockedBonds)

	info, err := tr.GetBondInfo(ctx, "s", "c1")
	require.NoError(t, err)
	assert.False(t, info.Enabled)
	assert.Zero(t, info.UnlockedCount)
	for _, b := range info.Bonds {
		assert.False(t, b.Unlocked)
	}
}

func TestRecordEvent_CustomEventTypeAndContext(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := tr.RecordEvent(ctx, "s", "c1", "C", 2, "gift", "brought tea", "rainy day")
	require.NoError(t, err)

	history, err := tr.GetHistory(ctx, "s", "c1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, affection.EventType("gift"), history[0].EventType)
	assert.Equal(t, "rainy day", history[0].Context)
	assert.Equal(t, testTime.Unix(), history[0].Timestamp)
}

func TestRecordEvent_CustomBondTable(t *testing.T) {
	table := affection.BondTable{
		{ID: "pals", Name: "Pals", RequiredTier: affection.TierFriend, Condition: affection.TierAtLeast{Tier: affection.TierFriend}},
	}
	tr := newTestTracker(t, store.NewMemoryStore(), nil, WithBondTable(table))
	ctx := context.Background()

	res, err := tr.RecordEvent(ctx, "s", "c1", "C", 5, affection.EventPositive, "hi", "")
	require.NoError(t, err)
	assert.Empty(t, res.UnlockedBonds)

	res, err = tr.RecordEvent(ctx, "s", "c1", "C", 10, affection.EventPositive, "help", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"pals"}, res.UnlockedBonds)
	assert.Len(t, tr.BondTable(), 1)
}

func TestGetHistory(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	history, err := tr.GetHistory(ctx, "s", "nobody", 5)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)

	for i := 0; i < 12; i++ {
		_, err := tr.RecordEvent(ctx, "s", "c1", "C", 1, affection.EventPositive, fmt.Sprintf("e%d", i), "")
		require.NoError(t, err)
	}

	history, err = tr.GetHistory(ctx, "s", "c1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "e9", history[0].Description)
	assert.Equal(t, "e11", history[2].Description)

	history, err = tr.GetHistory(ctx, "s", "c1", 0)
	require.NoError(t, err)
	assert.Len(t, history, DefaultHistoryLimit)

	// GetHistory never creates a record
	_, found, err := tr.store.Get(ctx, "s", "affection_nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetBondInfo(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := tr.RecordEvent(ctx, "s", "c1", "C", 5, affection.EventPositive, "thanks", "")
	require.NoError(t, err)

	info, err := tr.GetBondInfo(ctx, "s", "c1")
	require.NoError(t, err)
	assert.True(t, info.Enabled)
	assert.Equal(t, 6, info.TotalBonds)
	assert.Equal(t, 2, info.UnlockedCount)
	require.Len(t, info.Bonds, 6)

	byID := map[string]BondView{}
	for _, b := range info.Bonds {
		byID[b.ID] = b
	}
	assert.Equal(t, "first_meet", info.Bonds[0].ID)
	assert.True(t, byID["first_meet"].Unlocked)
	assert.Equal(t, testTime.Unix(), byID["first_meet"].UnlockTime)
	assert.Equal(t, 100.0, byID["shared_laugh"].ProgressPercent)
	assert.Equal(t, 50.0, byID["deep_conversation"].ProgressPercent)
	assert.Equal(t, 25.0, byID["trusted_confidant"].ProgressPercent)
	assert.Equal(t, 0.0, byID["storm_together"].ProgressPercent)
	assert.Equal(t, 6.3, byID["heart_to_heart"].ProgressPercent)
	assert.Contains(t, byID["heart_to_heart"].ConditionDescription, "(current: 5)")
	assert.Equal(t, affection.TierSoulmate, byID["heart_to_heart"].RequiredTier)
}

func TestGetBondInfo_UnknownCharacterNotPersisted(t *testing.T) {
	s := store.NewMemoryStore()
	tr := newTestTracker(t, s, nil)
	ctx := context.Background()

	info, err := tr.GetBondInfo(ctx, "s", "ghost")
	require.NoError(t, err)
	assert.Zero(t, info.UnlockedCount)
	assert.Equal(t, 100.0, info.Bonds[0].ProgressPercent)

	_, found, err := s.Get(ctx, "s", "affection_ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStatus(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), func(st *Settings) { st.PromptLimit = 2 })
	ctx := context.Background()

	status, err := tr.Status(ctx, "s", "c1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, affection.TierAcquaintance, status.Tier)
	assert.Empty(t, status.RecentEvents)
	assert.Empty(t, status.UnlockedBonds)
	assert.Equal(t, affection.TierAcquaintance.Describe(), status.Relationship)

	for _, d := range []string{"a", "b", "c"} {
		_, err := tr.RecordEvent(ctx, "s", "c1", "Alice", 5, affection.EventPositive, d, "")
		require.NoError(t, err)
	}

	status, err = tr.Status(ctx, "s", "c1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 15, status.AffectionValue)
	assert.Equal(t, "Friend", status.TierLabel)
	require.Len(t, status.RecentEvents, 2)
	assert.Equal(t, "b", status.RecentEvents[0].Description)
	// Same unlock time, so ordered by id
	assert.Equal(t, []string{"deep_conversation", "first_meet", "shared_laugh"}, status.UnlockedBonds)
	require.Len(t, status.BondDetails, 3)
	assert.Equal(t, "First Meeting", status.BondDetails[1].Name)
}

func TestResetCharacter(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	res, err := tr.ResetCharacter(ctx, "s", "nobody", "because")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "not found")

	for i := 0; i < 6; i++ {
		_, err := tr.RecordEvent(ctx, "s", "c1", "Alice", 10, affection.EventPositive, "good", "")
		require.NoError(t, err)
	}

	res, err = tr.ResetCharacter(ctx, "s", "c1", "user asked")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 60, res.OldValue)
	assert.Equal(t, affection.TierCloseFriend, res.OldTier)
	assert.Zero(t, res.NewValue)
	assert.Contains(t, res.Message, "Alice")

	rec, err := tr.GetOrCreate(ctx, "s", "c1", "Alice")
	require.NoError(t, err)
	assert.Zero(t, rec.TotalPositive)
	assert.Empty(t, rec.UnlockedBonds())
	require.Len(t, rec.Events, 1)
	assert.Contains(t, rec.Events[0].Description, "user asked")
}

func TestListCharacters(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := tr.RecordEvent(ctx, "s", "bob", "Bob", -20, affection.EventNegative, "rude", "")
	require.NoError(t, err)
	_, err = tr.RecordEvent(ctx, "s", "alice", "Alice", 20, affection.EventPositive, "kind", "")
	require.NoError(t, err)
	_, err = tr.GetOrCreate(ctx, "other", "carol", "Carol")
	require.NoError(t, err)

	list, err := tr.ListCharacters(ctx, "s")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].CharacterID)
	assert.Equal(t, affection.TierFriend, list[0].Tier)
	assert.Equal(t, "bob", list[1].CharacterID)
	assert.Equal(t, -20, list[1].AffectionValue)

	plain := newTestTracker(t, plainStore{inner: store.NewMemoryStore()}, nil)
	_, err = plain.ListCharacters(ctx, "s")
	assert.ErrorIs(t, err, ErrListUnsupported)
}

func TestPlainStorePath(t *testing.T) {
	tr := newTestTracker(t, plainStore{inner: store.NewMemoryStore()}, nil)
	ctx := context.Background()

	_, err := tr.RecordEvent(ctx, "s", "c1", "C", 5, affection.EventPositive, "hi", "")
	require.NoError(t, err)
	res, err := tr.RecordEvent(ctx, "s", "c1", "C", 5, affection.EventPositive, "hi", "")
	require.NoError(t, err)
	assert.Equal(t, 10, res.NewAffection)
}

func TestConcurrentEventsAreSerialized(t *testing.T) {
	tr := newTestTracker(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tr.RecordEvent(ctx, "s", "c1", "C", 1, affection.EventPositive, "tick", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := tr.GetOrCreate(ctx, "s", "c1", "C")
	require.NoError(t, err)
	assert.Equal(t, 25, rec.AffectionValue)
	assert.Equal(t, 25, rec.TotalPositive)
	assert.Len(t, rec.Events, 20)
	assert.Zero(t, tr.locks.Len())
}

func TestVersionConflictIsRetried(t *testing.T) {
	rs := &racingStore{MemoryStore: store.NewMemoryStore(), races: 1}
	tr := newTestTracker(t, rs, nil)
	ctx := context.Background()

	res, err := tr.RecordEvent(ctx, "s", "alice", "Alice", 5, affection.EventPositive, "thanks", "")
	require.NoError(t, err)
	assert.Equal(t, 5, res.NewAffection)
	assert.Equal(t, 2, rs.writes)
}

func TestVersionConflictGivesUp(t *testing.T) {
	rs := &racingStore{MemoryStore: store.NewMemoryStore(), races: locking.MaxRetries}
	tr := newTestTracker(t, rs, nil)

	_, err := tr.RecordEvent(context.Background(), "s", "alice", "Alice", 5, affection.EventPositive, "thanks", "")
	require.Error(t, err)
	assert.True(t, locking.IsConflict(err))
	assert.Equal(t, locking.MaxRetries, rs.writes)
}

func TestStorageErrorsPropagate(t *testing.T) {
	tr := newTestTracker(t, failingStore{}, nil)
	ctx := context.Background()

	_, err := tr.RecordEvent(ctx, "s", "c1", "C", 1, affection.EventPositive, "x", "")
	assert.ErrorIs(t, err, errBackend)
	_, err = tr.GetHistory(ctx, "s", "c1", 1)
	assert.ErrorIs(t, err, errBackend)
	_, err = tr.ResetCharacter(ctx, "s", "c1", "x")
	assert.ErrorIs(t, err, errBackend)
}

func TestCorruptRecord(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(context.Background(), "s", "affection_c1", "{not json"))
	tr := newTestTracker(t, s, nil)

	_, err := tr.GetHistory(context.Background(), "s", "c1", 5)
	assert.Error(t, err)
	_, err = tr.RecordEvent(context.Background(), "s", "c1", "C", 1, affection.EventPositive, "x", "")
	assert.Error(t, err)
}

// pingStore reports a fixed health result
type pingStore struct {
	*store.MemoryStore
	err error
}

func (p pingStore) Ping(context.Context) error {
	return p.err
}

func TestPing(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, newTestTracker(t, store.NewMemoryStore(), nil).Ping(ctx))
	assert.NoError(t, newTestTracker(t, pingStore{MemoryStore: store.NewMemoryStore()}, nil).Ping(ctx))

	tr := newTestTracker(t, pingStore{MemoryStore: store.NewMemoryStore(), err: errBackend}, nil)
	assert.ErrorIs(t, tr.Ping(ctx), errBackend)
}

func TestJournal(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported store", func(t *testing.T) {
		tr := newTestTracker(t, store.NewMemoryStore(), nil)
		_, err := tr.Journal(ctx, "", "alice", 5)
		assert.ErrorIs(t, err, ErrJournalUnsupported)
	})

	t.Run("invalid id", func(t *testing.T) {
		tr := newTestTracker(t, store.NewMemoryStore(), nil)
		_, err := tr.Journal(ctx, "", "", 5)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("git store", func(t *testing.T) {
		gs, err := store.NewGitStore(filepath.Join(t.TempDir(), "journal"))
		require.NoError(t, err)
		tr := newTestTracker(t, gs, nil)

		_, err = tr.RecordEvent(ctx, "", "alice", "Alice", 5, affection.EventPositive, "thanks", "")
		require.NoError(t, err)
		_, err = tr.RecordEvent(ctx, "", "alice", "Alice", 5, affection.EventPositive, "help", "")
		require.NoError(t, err)

		entries, err := tr.Journal(ctx, "", "alice", 0)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		entries, err = tr.Journal(ctx, "", "alice", 1)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
