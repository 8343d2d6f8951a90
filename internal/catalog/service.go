// Package catalog serves the game catalog, reviews and its admin CRUD.
package catalog

import (
	"context"
	"strings"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 3
	MaxLimit     = 100
)

var validate = validator.New()

// ListFilter narrows and pages the catalog.
type ListFilter struct {
	Query string
	Genre string
	Page  int
	Limit int
}

// Normalize clamps Page and Limit into their valid ranges.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	f.Query = strings.TrimSpace(f.Query)
	f.Genre = strings.TrimSpace(f.Genre)
	return f
}

// GameInput is the admin-editable part of a game.
type GameInput struct {
	Title       string   `validate:"required,max=100"`
	Description string   `validate:"max=10000"`
	Genre       string   `validate:"max=50"`
	ReleaseYear int      `validate:"omitempty,min=1950,max=2100"`
	Rating      float64  `validate:"min=0,max=10"`
	Image       string   `validate:"max=255"`
	Price       int64    `validate:"min=0"`
	Discount    int      `validate:"min=0,max=100"`
	Screenshots []string `validate:"dive,required,max=255"`
}

// ReviewInput is a rated comment left on a game.
type ReviewInput struct {
	Text   string `validate:"required,max=5000"`
	Rating int    `validate:"min=1,max=5"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns one page of games matching f, plus the total match count.
// f is normalized first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Game, int64, error) {
	f = f.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Game{})
	if f.Query != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(f.Query)+"%")
	}
	if f.Genre != "" {
		query = query.Where("genre = ?", f.Genre)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count games")
	}

	var games []models.Game
	if err := query.Order("title ASC, id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&games).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list games")
	}
	return games, total, nil
}

// Genres lists the distinct non-empty genres in alphabetical order.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	if err := s.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("genre <> ''").
		Distinct().
		Order("genre ASC").
		Pluck("genre", &genres).Error; err != nil {
		return nil, errors.Wrap(err, "list genres")
	}
	return genres, nil
}

// Get loads a game with its screenshots and reviews, newest review first.
func (s *Service) Get(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).
		Preload("Screenshots").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Game not found")
		}
		return nil, errors.Wrap(err, "load game")
	}
	return &game, nil
}

// GamesByIDs loads the games with the given ids, skipping unknown ones.
func (s *Service) GamesByIDs(ctx context.Context, ids []uint) ([]models.Game, error) {
	if len(ids) == 0 {
		return []models.Game{}, nil
	}
	var games []models.Game
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("title ASC, id ASC").Find(&games).Error; err != nil {
		return nil, errors.Wrap(err, "load games")
	}
	return games, nil
}

// Exists reports whether a game with id is in the catalog.
func (s *Service) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "check game")
	}
	return count > 0, nil
}

// AddReview stores a review on an existing game.
func (s *Service) AddReview(ctx context.Context, gameID uint, in ReviewInput) (*models.Review, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validate.Struct(in); err != nil {
		return nil, apperr.FromValidation(err)
	}

	ok, err := s.Exists(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Game not found")
	}

	review := models.Review{GameID: gameID, Text: in.Text, Rating: in.Rating}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, errors.Wrap(err, "create review")
	}
	return &review, nil
}

func (in GameInput) apply(game *models.Game) {
	game.Title = strings.TrimSpace(in.Title)
	game.Description = in.Description
	game.Genre = strings.TrimSpace(in.Genre)
	game.ReleaseYear = in.ReleaseYear
	game.Rating = in.Rating
	game.Image = in.Image
	game.Price = in.Price
	game.Discount = in.Discount
}

func screenshots(gameID uint, images []string) []models.GameScreenshot {
	shots := make([]models.GameScreenshot, 0, len(images))
	for _, img := range images {
		shots = append(shots, models.GameScreenshot{GameID: gameID, Image: img})
	}
	return shots
}

// Create adds a game to the catalog.
func (s *Service) Create(ctx context.Context, in GameInput) (*models.Game, error) {
	if err := validate.Struct(in); err != nil {
		return nil, apperr.FromValidation(err)
	}

	var game models.Game
	in.apply(&game)
	game.Screenshots = screenshots(0, in.Screenshots)
	if err := s.db.WithContext(ctx).Create(&game).Error; err != nil {
		return nil, errors.Wrap(err, "create game")
	}

	logging.Log.WithFields(logrus.Fields{"game_id": game.ID, "title": game.Title}).Info("game created")
	return &game, nil
}

// Update replaces a game's fields and screenshots.
func (s *Service) Update(ctx context.Context, id uint, in GameInput) (*models.Game, error) {
	if err := validate.Struct(in); err != nil {
		return nil, apperr.FromValidation(err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, id).Error; err != nil {
			return err
		}
		in.apply(&game)
		if err := tx.Omit("Screenshots", "Reviews").Save(&game).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("game_id = ?", id).Delete(&models.GameScreenshot{}).Error; err != nil {
			return err
		}
		if shots := screenshots(id, in.Screenshots); len(shots) > 0 {
			return tx.Create(&shots).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Game not found")
		}
		return nil, errors.Wrap(err, "update game")
	}

	logging.Log.WithField("game_id", id).Info("game updated")
	return s.Get(ctx, id)
}

// Delete removes a game from the catalog.
func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Game{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete game")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Game not found")
	}
	logging.Log.WithField("game_id", id).Info("game deleted")
	return nil
}
