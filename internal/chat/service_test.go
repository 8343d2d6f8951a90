package chat

import (
	"context"
	"testing"
	"time"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/database/dbtest"
	"gamevault/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(t *testing.T, db *gorm.DB, username string) uint {
	t.Helper()
	u := models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func befriend(t *testing.T, db *gorm.DB, a, b uint) {
	t.Helper()
	require.NoError(t, db.Create(&[]models.Friend{
		{UserID: a, FriendID: b},
		{UserID: b, FriendID: a},
	}).Error)
}

// fixedClock returns a Service whose clock only moves when told to.
func fixedClock(db *gorm.DB, start time.Time) (*Service, func(time.Duration)) {
	now := start
	svc := NewService(db)
	svc.now = func() time.Time { return now }
	return svc, func(d time.Duration) { now = now.Add(d) }
}

func texts(messages []models.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Text)
	}
	return out
}

func TestPostMessageRequiresFriendship(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	alice, bob := newUser(t, db, "alice"), newUser(t, db, "bob")

	_, err := svc.PostMessage(context.Background(), alice, bob, "hi")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	var n int64
	require.NoError(t, db.Model(&models.Message{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPostMessageRejectsBlankText(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	alice, bob := newUser(t, db, "alice"), newUser(t, db, "bob")
	befriend(t, db, alice, bob)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.PostMessage(context.Background(), alice, bob, text)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
}

func TestPostMessageTrimsText(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	alice, bob := newUser(t, db, "alice"), newUser(t, db, "bob")
	befriend(t, db, alice, bob)

	msg, err := svc.PostMessage(context.Background(), alice, bob, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.False(t, msg.IsRead)
}

func TestConversationExample(t *testing.T) {
	db := dbtest.New(t)
	svc, advance := fixedClock(db, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	alice, bob := newUser(t, db, "alice"), newUser(t, db, "bob")
	befriend(t, db, alice, bob)
	ctx := context.Background()

	hi, err := svc.PostMessage(ctx, alice, bob, "hi")
	require.NoError(t, err)

	got, err := svc.ListMessages(ctx, bob, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"hi"}, texts(got))
	assert.Equal(t, "alice", got[0].Sender.Username)

	advance(time.Second)
	_, err = svc.PostMessage(ctx, bob, alice, "hey")
	require.NoError(t, err)

	since := hi.Timestamp
	got, err = svc.ListMessages(ctx, alice, bob, &since)
	require.NoError(t, err)
	assert.Equal(t, []string{"hey"}, texts(got))
}

func TestTimestampsStrictlyIncreaseWhenClockStalls(t *testing.T) {
	db := dbtest.New(t)
	svc, advance := fixedClock(db, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	alice, bob := newUser(t, db, "alice"), newUser(t, db, "bob")
	befriend(t, db, alice, bob)
	ctx := context.Background()

	var posted []*models.Message
	for _, text := range []string{"one", "two", "three"} {
		m, err := svc.PostMessage(ctx, alice, bob, text)
		require.NoError(t, err)
		posted = append(posted, m)
	}
	// A clock that goes backwards must not break ordering either.
	advance(-time.Hour)
	m, err := svc.PostMessage(ctx, bob, alice, "four")
	require.NoError(t, err)
	posted = append(posted, m)

	for i := 1; i < len(posted); i++ {
		assert.True(t, posted[i].Timestamp.After(posted[i-1].Timestamp), "message %d", i)
	}
}

func TestPollingCursor(t *testing.T) {
	db := dbtest.New(t)
	svc, advance := fixedClock(db, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	alice, bob := newUser(t, db, "alice"), newUser(t, db, "bob")
	befriend(t, db, alice, bob)
	ctx := context.Background()

	for i, text := range []string{"a", "b", "c", "d"} {
		if i%2 == 0 {
			advance(time.Millisecond)
		}
		_, err := svc.PostMessage(ctx, alice, bob, text)
		require.NoError(t, err)
	}

	all, err := svc.ListMessages(ctx, bob, alice, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, texts(all))

	last := all[len(all)-1].Timestamp
	got, err := svc.ListMessages(ctx, bob, alice, &last)
	require.NoError(t, err)
	assert.Empty(t, got)

	prev := all[len(all)-2].Timestamp
	got, err = svc.ListMessages(ctx, bob, alice, &prev)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, texts(got))

	// Walking the cursor one message at a time visits every message once.
	var seen []string
	var cursor *time.Time
	for {
		batch, err := svc.ListMessages(ctx, bob, alice, cursor)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		seen = append(seen, batch[0].Text)
		ts := batch[0].Timestamp
		cursor = &ts
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, seen)
}

func TestListMessagesForNonFriendsIsEmpty(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	alice, bob, carol := newUser(t, db, "alice"), newUser(t, db, "bob"), newUser(t, db, "carol")
	befriend(t, db, alice, bob)
	ctx := context.Background()

	_, err := svc.PostMessage(ctx, alice, bob, "secret")
	require.NoError(t, err)

	for _, pair := range [][2]uint{{carol, alice}, {carol, bob}, {alice, carol}, {alice, 9999}} {
		got, err := svc.ListMessages(ctx, pair[0], pair[1], nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}

	// Unfriending hides the history as well.
	require.NoError(t, db.Where("1 = 1").Delete(&models.Friend{}).Error)
	got, err := svc.ListMessages(ctx, alice, bob, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListMessagesExcludesOtherConversations(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	alice, bob, carol := newUser(t, db, "alice"), newUser(t, db, "bob"), newUser(t, db, "carol")
	befriend(t, db, alice, bob)
	befriend(t, db, alice, carol)
	ctx := context.Background()

	_, err := svc.PostMessage(ctx, alice, bob, "to bob")
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, carol, alice, "from carol")
	require.NoError(t, err)

	got, err := svc.ListMessages(ctx, alice, bob, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"to bob"}, texts(got))
}
