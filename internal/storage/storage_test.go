package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlife/eventlife/internal/model"
)

// Helper to create an in-memory database for testing.
func setupTestDB(t *testing.T) *DB {
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenClose(t *testing.T) {
	t.Run("in_memory", func(t *testing.T) {
		db, err := Open(Options{InMemory: true})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		assert.NoError(t, db.Close())
	})

	t.Run("empty_path_uses_in_memory", func(t *testing.T) {
		db, err := Open(Options{Path: ""})
		require.NoError(t, err)
		db.Close()
	})

	t.Run("on_disk", func(t *testing.T) {
		dir := t.TempDir()
		db, err := Open(Options{Path: dir})
		require.NoError(t, err)
		assert.Equal(t, dir, db.Path())
		db.Close()
	})
}

func TestEventRepoCRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)

	ev := &model.Event{Title: "Opening keynote", TimeLabel: "09:00", Place: "Auditorium"}
	require.NoError(t, repo.Create(ev))
	require.NotEmpty(t, ev.ID)
	assert.Equal(t, model.GenerateEventKey(ev.ID), ev.Key)

	got, err := repo.Get(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opening keynote", got.Title)
	assert.Equal(t, "09:00", got.TimeLabel)

	require.NoError(t, repo.Delete(ev.ID))
	_, err = repo.Get(ev.ID)
	assert.True(t, IsErrKeyNotFound(err))
}

func TestEventRepoListOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)

	require.NoError(t, repo.Create(&model.Event{ID: "b", Title: "Lunch", TimeLabel: "12:30"}))
	require.NoError(t, repo.Create(&model.Event{ID: "a", Title: "Keynote", TimeLabel: "9:00"}))
	require.NoError(t, repo.Create(&model.Event{ID: "c", Title: "Networking", TimeLabel: "TBD"}))

	events, err := repo.List()
	require.NoError(t, err)
	require.Len(t, events, 3)
	// Chronological order; "9:00" sorts before "12:30" despite the short
	// hour, and the unparseable label sorts last.
	assert.Equal(t, "Keynote", events[0].Title)
	assert.Equal(t, "Lunch", events[1].Title)
	assert.Equal(t, "Networking", events[2].Title)
}

func TestEventRepoSections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)

	require.NoError(t, repo.Create(&model.Event{ID: "a", Title: "Keynote", TimeLabel: "09:00", Category: "Talks"}))
	require.NoError(t, repo.Create(&model.Event{ID: "b", Title: "Go workshop", TimeLabel: "10:00", Category: "Workshops"}))
	require.NoError(t, repo.Create(&model.Event{ID: "c", Title: "Lightning talks", TimeLabel: "11:00", Category: "Talks"}))
	require.NoError(t, repo.Create(&model.Event{ID: "d", Title: "Hallway track", TimeLabel: "12:00"}))

	sections, err := repo.Sections()
	require.NoError(t, err)
	require.Len(t, sections, 3)

	byTitle := make(map[string]int)
	for _, s := range sections {
		byTitle[s.Title] = len(s.Events)
	}
	assert.Equal(t, 2, byTitle["Talks"])
	assert.Equal(t, 1, byTitle["Workshops"])
	assert.Equal(t, 1, byTitle["General"])
}

func TestChatRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepo(db)

	require.NoError(t, repo.Post(&model.ChatMessage{Author: "ana", Message: "hello"}))
	require.NoError(t, repo.Post(&model.ChatMessage{Author: "rui", Message: "hi there"}))

	msgs, err := repo.List()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.NotEmpty(t, m.ID)
		assert.False(t, m.Timestamp.IsZero())
	}
}

func TestQuestionRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepo(db)

	q := &model.Question{Title: "Is there wifi?", Author: "ana"}
	require.NoError(t, repo.Create(q))

	require.NoError(t, repo.IncrementReplies(q.ID))
	require.NoError(t, repo.IncrementReplies(q.ID))

	got, err := repo.Get(q.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Replies)

	_, err = repo.Get("missing")
	assert.True(t, IsErrKeyNotFound(err))
}

func TestListKeys(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepo(db)

	require.NoError(t, repo.Create(&model.Event{ID: "a", Title: "One", TimeLabel: "09:00"}))
	require.NoError(t, repo.Create(&model.Event{ID: "b", Title: "Two", TimeLabel: "10:00"}))

	keys, err := db.ListKeys(model.PrefixEvent + ":")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"event:a", "event:b"}, keys)
}
