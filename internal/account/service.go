// Package account owns users, their profiles and explicit presence writes.
package account

import (
	"context"
	"strings"
	"time"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/database"
	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MaxNicknameLength = 50

type Service struct {
	db       *gorm.DB
	now      func() time.Time
	hashCost int
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now, hashCost: bcrypt.DefaultCost}
}

// ProfileUpdate carries the editable profile fields. Nil fields are left as
// they are.
type ProfileUpdate struct {
	Nickname *string
	Avatar   *string
	Bio      *string
}

// CreateUser stores a user together with its profile in one transaction. The
// profile nickname starts out equal to the username.
func (s *Service) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("Username is required")
	}
	if len([]rune(username)) > MaxNicknameLength {
		return nil, apperr.Validation("Username must be at most %d characters", MaxNicknameLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Create(&user).Error; err != nil {
			return err
		}
		user.Profile = models.Profile{
			UserID:   user.ID,
			Nickname: username,
			Avatar:   models.DefaultAvatar,
			Status:   models.StatusOffline,
			LastSeen: s.now().UTC(),
		}
		return tx.Create(&user.Profile).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Username already exists")
		}
		return nil, errors.Wrap(err, "create user")
	}

	logging.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("user registered")
	return &user, nil
}

// Authenticate checks a username or email against a password.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR (email = ? AND email <> '')", login, login).
		Order("id ASC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, errors.Wrap(err, "load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return &user, nil
}

// Login authenticates and marks the user online.
func (s *Service) Login(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}
	if err := s.setPresence(ctx, user.ID, models.StatusOnline); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout marks the user offline.
func (s *Service) Logout(ctx context.Context, userID uint) error {
	return s.setPresence(ctx, userID, models.StatusOffline)
}

// setPresence is the only writer of Profile.Status and Profile.LastSeen.
func (s *Service) setPresence(ctx context.Context, userID uint, status models.PresenceStatus) error {
	res := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":    status,
			"last_seen": s.now().UTC(),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update presence")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Profile not found")
	}

	logging.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"status":  status,
	}).Info("presence updated")
	return nil
}

// User loads a user with its profile.
func (s *Service) User(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, errors.Wrap(err, "load user")
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of upd to the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*models.Profile, error) {
	changes := map[string]interface{}{}
	if upd.Nickname != nil {
		nickname := strings.TrimSpace(*upd.Nickname)
		if nickname == "" {
			return nil, apperr.Validation("Nickname is required")
		}
		if len([]rune(nickname)) > MaxNicknameLength {
			return nil, apperr.Validation("Nickname must be at most %d characters", MaxNicknameLength)
		}
		changes["nickname"] = nickname
	}
	if upd.Avatar != nil {
		avatar := strings.TrimSpace(*upd.Avatar)
		if avatar == "" {
			avatar = models.DefaultAvatar
		}
		changes["avatar"] = avatar
	}
	if upd.Bio != nil {
		changes["bio"] = strings.TrimSpace(*upd.Bio)
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&profile).Updates(changes).Error
	})
	switch {
	case err == nil:
		return &profile, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("Profile not found")
	case database.IsUniqueViolation(err):
		return nil, apperr.Conflict("Nickname already taken")
	default:
		return nil, errors.Wrap(err, "update profile")
	}
}

// SearchUsers finds users whose nickname or username contains query,
// excluding excludeID. It returns one page plus the total match count.
func (s *Service) SearchUsers(ctx context.Context, query string, excludeID uint, page, limit int) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("users.id <> ?", excludeID)
	if query = strings.ToLower(strings.TrimSpace(query)); query != "" {
		pattern := "%" + query + "%"
		q = q.Where("(LOWER(profiles.nickname) LIKE ? OR LOWER(users.username) LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	var users []models.User
	if err := q.Preload("Profile").
		Order("profiles.nickname ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "search users")
	}
	return users, total, nil
}

// PurchasedGames lists the games a user owns, most recent purchase first.
func (s *Service) PurchasedGames(ctx context.Context, userID uint) ([]models.Game, error) {
	var owned []models.PurchasedGame
	if err := s.db.WithContext(ctx).
		Preload("Game").
		Where("user_id = ?", userID).
		Order("purchased_at DESC, id DESC").
		Find(&owned).Error; err != nil {
		return nil, errors.Wrap(err, "list purchased games")
	}

	games := make([]models.Game, 0, len(owned))
	for _, p := range owned {
		// Soft-deleted games are not preloaded.
		if p.Game.ID != 0 {
			games = append(games, p.Game)
		}
	}
	return games, nil
}
