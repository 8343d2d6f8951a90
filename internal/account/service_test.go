package account

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/database/dbtest"
	"gamevault/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *gorm.DB, *time.Time) {
	t.Helper()
	db := dbtest.New(t)
	now := epoch
	svc := NewService(db)
	svc.hashCost = bcrypt.MinCost
	svc.now = func() time.Time { return now }
	return svc, db, &now
}

func strPtr(s string) *string { return &s }

func TestCreateUserCreatesProfile(t *testing.T) {
	svc, db, _ := newService(t)

	user, err := svc.CreateUser(context.Background(), " alice ", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "password123", user.PasswordHash)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "alice", profile.Nickname)
	assert.Equal(t, models.DefaultAvatar, profile.Avatar)
	assert.Equal(t, models.StatusOffline, profile.Status)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice", "", "password123")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "alice", "other@example.com", "password123")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	var users, profiles int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), profiles)
}

func TestCreateUserNicknameTakenRollsBackUser(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "alice", "", "password123")
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, alice.ID, ProfileUpdate{Nickname: strPtr("bob")})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "bob", "", "password123")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "bob").Count(&n).Error)
	assert.Zero(t, n, "user row must not outlive a failed profile insert")
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "  ", "", "password123")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	long := make([]rune, MaxNicknameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.CreateUser(ctx, string(long), "", "password123")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLoginAndLogoutWritePresence(t *testing.T) {
	svc, db, now := newService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	*now = epoch.Add(time.Hour)
	user, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, models.StatusOnline, profile.Status)
	assert.True(t, profile.LastSeen.Equal(epoch.Add(time.Hour)))
	assert.True(t, profile.IsOnline(epoch.Add(time.Hour+time.Minute)))
	assert.False(t, profile.IsOnline(epoch.Add(time.Hour+10*time.Minute)), "stored status is not trusted")

	*now = epoch.Add(2 * time.Hour)
	require.NoError(t, svc.Logout(ctx, user.ID))
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, models.StatusOffline, profile.Status)
	assert.True(t, profile.LastSeen.Equal(epoch.Add(2*time.Hour)))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice", "", "password123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Login(ctx, "", "password123")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized, "an empty login must not match a user without email")
}

func TestLogoutUnknownUser(t *testing.T) {
	svc, _, _ := newService(t)
	assert.ErrorIs(t, svc.Logout(context.Background(), 42), apperr.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, "alice", "", "password123")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "bob", "", "password123")
	require.NoError(t, err)

	profile, err := svc.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		Nickname: strPtr(" Ally "),
		Bio:      strPtr("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ally", profile.Nickname)
	assert.Equal(t, "hello", profile.Bio)
	assert.Equal(t, models.DefaultAvatar, profile.Avatar)

	_, err = svc.UpdateProfile(ctx, alice.ID, ProfileUpdate{Nickname: strPtr("bob")})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.UpdateProfile(ctx, alice.ID, ProfileUpdate{Nickname: strPtr("")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.UpdateProfile(ctx, 999, ProfileUpdate{Bio: strPtr("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	user, err := svc.User(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ally", user.Profile.Nickname)
}

func TestSearchUsers(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	var me uint
	for i, name := range []string{"me", "gamer_one", "Gamer_two", "other"} {
		u, err := svc.CreateUser(ctx, name, fmt.Sprintf("%d@example.com", i), "password123")
		require.NoError(t, err)
		if name == "me" {
			me = u.ID
		}
	}

	users, total, err := svc.SearchUsers(ctx, "GAMER", me, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 1)
	assert.Equal(t, "Gamer_two", users[0].Profile.Nickname)

	users, total, err = svc.SearchUsers(ctx, "", me, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, u := range users {
		assert.NotEqual(t, me, u.ID)
	}
}

func TestPurchasedGames(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "alice", "", "password123")
	require.NoError(t, err)
	game := models.Game{Title: "Portal", Price: 1999}
	require.NoError(t, db.Create(&game).Error)
	require.NoError(t, db.Create(&models.PurchasedGame{UserID: user.ID, GameID: game.ID}).Error)

	games, err := svc.PurchasedGames(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Portal", games[0].Title)
}
