package friendship

import (
	"context"
	"sync"
	"testing"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/database/dbtest"
	"gamevault/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(t *testing.T, db *gorm.DB, username string) uint {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func countEdges(t *testing.T, db *gorm.DB, a, b uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Friend{}).
		Where(pairCondition("user_id", "friend_id"), a, b, b, a).
		Count(&n).Error)
	return n
}

func countRequests(t *testing.T, db *gorm.DB, a, b uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.FriendRequest{}).
		Where(pairCondition("sender_id", "receiver_id"), a, b, b, a).
		Count(&n).Error)
	return n
}

func setup(t *testing.T) (*Service, *gorm.DB, uint, uint) {
	t.Helper()
	db := dbtest.New(t)
	return NewService(db), db, newUser(t, db, "alice"), newUser(t, db, "bob")
}

func TestSendRequestCreatesPendingRequest(t *testing.T) {
	svc, db, alice, bob := setup(t)
	ctx := context.Background()

	outcome, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRequested, outcome)

	var req models.FriendRequest
	require.NoError(t, db.Where("sender_id = ? AND receiver_id = ?", alice, bob).First(&req).Error)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, int64(0), countEdges(t, db, alice, bob))
}

func TestSendRequestNoops(t *testing.T) {
	svc, db, alice, bob := setup(t)
	ctx := context.Background()

	outcome, err := svc.SendRequest(ctx, alice, alice)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, outcome)

	_, err = svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	outcome, err = svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, outcome, "duplicate request")
	assert.Equal(t, int64(1), countRequests(t, db, alice, bob))
}

func TestSendRequestToUnknownUser(t *testing.T) {
	svc, _, alice, _ := setup(t)

	_, err := svc.SendRequest(context.Background(), alice, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMutualRequestsBecomeFriends(t *testing.T) {
	for _, tc := range []struct {
		name     string
		firstIsA bool
	}{
		{name: "alice first", firstIsA: true},
		{name: "bob first", firstIsA: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc, db, alice, bob := setup(t)
			ctx := context.Background()
			first, second := alice, bob
			if !tc.firstIsA {
				first, second = bob, alice
			}

			outcome, err := svc.SendRequest(ctx, first, second)
			require.NoError(t, err)
			assert.Equal(t, OutcomeRequested, outcome)

			outcome, err = svc.SendRequest(ctx, second, first)
			require.NoError(t, err)
			assert.Equal(t, OutcomeFriends, outcome)

			assert.Equal(t, int64(2), countEdges(t, db, alice, bob))
			assert.Equal(t, int64(0), countRequests(t, db, alice, bob))
		})
	}
}

func TestConcurrentMutualRequests(t *testing.T) {
	svc, db, alice, bob := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, pair := range [][2]uint{{alice, bob}, {bob, alice}} {
		wg.Add(1)
		go func(i int, sender, receiver uint) {
			defer wg.Done()
			_, errs[i] = svc.SendRequest(ctx, sender, receiver)
		}(i, pair[0], pair[1])
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int64(2), countEdges(t, db, alice, bob))
	assert.Equal(t, int64(0), countRequests(t, db, alice, bob))
}

func TestSendRequestBetweenFriendsRepairsMissingEdge(t *testing.T) {
	svc, db, alice, bob := setup(t)
	require.NoError(t, db.Create(&models.Friend{UserID: bob, FriendID: alice}).Error)

	outcome, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, outcome)
	assert.Equal(t, int64(2), countEdges(t, db, alice, bob))
	assert.Equal(t, int64(0), countRequests(t, db, alice, bob))
}

func TestSendRequestBetweenFriendsDropsLeftoverRequests(t *testing.T) {
	svc, db, alice, bob := setup(t)
	require.NoError(t, db.Create(&[]models.Friend{
		{UserID: alice, FriendID: bob},
		{UserID: bob, FriendID: alice},
	}).Error)
	require.NoError(t, db.Create(&models.FriendRequest{SenderID: alice, ReceiverID: bob}).Error)

	outcome, err := svc.SendRequest(context.Background(), bob, alice)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, outcome)
	assert.Equal(t, int64(2), countEdges(t, db, alice, bob))
	assert.Equal(t, int64(0), countRequests(t, db, alice, bob))
}

func TestSendRequestRacingAccept(t *testing.T) {
	svc, db, alice, bob := setup(t)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	var req models.FriendRequest
	require.NoError(t, db.First(&req).Error)

	var wg sync.WaitGroup
	var sendErr, acceptErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, sendErr = svc.SendRequest(ctx, bob, alice)
	}()
	go func() {
		defer wg.Done()
		_, acceptErr = svc.AcceptRequest(ctx, req.ID, bob)
	}()
	wg.Wait()

	// Whichever runs second finds the pair already resolved.
	require.NoError(t, sendErr)
	if acceptErr != nil {
		assert.ErrorIs(t, acceptErr, apperr.ErrNotFound)
	}
	assert.Equal(t, int64(2), countEdges(t, db, alice, bob))
	assert.Equal(t, int64(0), countRequests(t, db, alice, bob))
}

func TestRemoveFriendRacingSend(t *testing.T) {
	svc, db, alice, bob := setup(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&[]models.Friend{
		{UserID: alice, FriendID: bob},
		{UserID: bob, FriendID: alice},
	}).Error)

	var wg sync.WaitGroup
	var sendErr, removeErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, sendErr = svc.SendRequest(ctx, alice, bob)
	}()
	go func() {
		defer wg.Done()
		removeErr = svc.RemoveFriend(ctx, bob, alice)
	}()
	wg.Wait()

	require.NoError(t, sendErr)
	require.NoError(t, removeErr)
	assert.Equal(t, int64(0), countEdges(t, db, alice, bob))
	assert.LessOrEqual(t, countRequests(t, db, alice, bob), int64(1))
}

func TestAcceptRequest(t *testing.T) {
	svc, db, alice, bob := setup(t)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	var req models.FriendRequest
	require.NoError(t, db.First(&req).Error)

	accepted, err := svc.AcceptRequest(ctx, req.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, alice, accepted.SenderID)
	assert.Equal(t, models.RequestAccepted, accepted.Status)

	assert.Equal(t, int64(2), countEdges(t, db, alice, bob))
	assert.Equal(t, int64(0), countRequests(t, db, alice, bob))

	_, err = svc.AcceptRequest(ctx, req.ID, bob)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "a resolved request is gone")
}

func TestAcceptRequestByNonReceiver(t *testing.T) {
	svc, db, alice, bob := setup(t)
	carol := newUser(t, db, "carol")
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	var req models.FriendRequest
	require.NoError(t, db.First(&req).Error)

	for _, actor := range []uint{alice, carol} {
		_, err = svc.AcceptRequest(ctx, req.ID, actor)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	}

	var stored models.FriendRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, models.RequestPending, stored.Status)
	assert.Equal(t, int64(0), countEdges(t, db, alice, bob))
}

func TestRejectAndCancelRequest(t *testing.T) {
	svc, db, alice, bob := setup(t)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	var req models.FriendRequest
	require.NoError(t, db.First(&req).Error)

	assert.ErrorIs(t, svc.RejectRequest(ctx, req.ID, alice), apperr.ErrNotFound, "sender cannot reject")
	assert.ErrorIs(t, svc.CancelRequest(ctx, req.ID, bob), apperr.ErrNotFound, "receiver cannot cancel")
	assert.Equal(t, int64(1), countRequests(t, db, alice, bob))

	require.NoError(t, svc.RejectRequest(ctx, req.ID, bob))
	assert.Equal(t, int64(0), countRequests(t, db, alice, bob))

	// After rejection the pair is back to none, so a new request is allowed.
	outcome, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRequested, outcome)
	var again models.FriendRequest
	require.NoError(t, db.Where("sender_id = ?", alice).First(&again).Error)
	assert.NotEqual(t, req.ID, again.ID)

	require.NoError(t, svc.CancelRequest(ctx, again.ID, alice))
	assert.Equal(t, int64(0), countRequests(t, db, alice, bob))
	assert.Equal(t, int64(0), countEdges(t, db, alice, bob))
}

func TestRemoveFriendIsIdempotent(t *testing.T) {
	svc, db, alice, bob := setup(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&[]models.Friend{
		{UserID: alice, FriendID: bob},
		{UserID: bob, FriendID: alice},
	}).Error)

	require.NoError(t, svc.RemoveFriend(ctx, alice, bob))
	assert.Equal(t, int64(0), countEdges(t, db, alice, bob))
	require.NoError(t, svc.RemoveFriend(ctx, alice, bob))
	assert.Equal(t, int64(0), countEdges(t, db, alice, bob))
}

func TestRemoveFriendDeletesOneSidedEdge(t *testing.T) {
	svc, db, alice, bob := setup(t)
	require.NoError(t, db.Create(&models.Friend{UserID: bob, FriendID: alice}).Error)

	require.NoError(t, svc.RemoveFriend(context.Background(), alice, bob))
	assert.Equal(t, int64(0), countEdges(t, db, alice, bob))
}

func TestStatus(t *testing.T) {
	svc, db, alice, bob := setup(t)
	carol := newUser(t, db, "carol")
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, carol, alice)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, alice, carol)
	require.NoError(t, err)

	for _, tc := range []struct {
		viewer, other uint
		want          State
	}{
		{alice, alice, StateSelf},
		{alice, bob, StatePendingOutgoing},
		{bob, alice, StatePendingIncoming},
		{alice, carol, StateFriends},
		{bob, carol, StateNone},
	} {
		got, err := svc.Status(ctx, tc.viewer, tc.other)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "viewer %d other %d", tc.viewer, tc.other)
	}
}

func TestListings(t *testing.T) {
	svc, db, alice, bob := setup(t)
	carol := newUser(t, db, "carol")
	require.NoError(t, db.Create(&models.Profile{UserID: carol, Nickname: "carol"}).Error)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, alice, carol)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, carol, alice)
	require.NoError(t, err)

	friends, err := svc.Friends(ctx, alice)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, carol, friends[0].ID)
	assert.Equal(t, "carol", friends[0].Profile.Nickname)

	outgoing, err := svc.OutgoingRequests(ctx, alice)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, bob, outgoing[0].ReceiverID)

	incoming, err := svc.IncomingRequests(ctx, bob)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, alice, incoming[0].Sender.ID)

	ok, err := svc.AreFriends(ctx, carol, alice)
	require.NoError(t, err)
	assert.True(t, ok)
}
