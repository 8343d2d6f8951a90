// Package chat stores direct messages between friends and serves them to
// polling clients.
package chat

import (
	"context"
	"strings"
	"time"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/metrics"
	"gamevault/backend/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxTextLength caps a single message.
const MaxTextLength = 2000

// resolution is the timestamp precision every store keeps.
const resolution = time.Microsecond

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

const conversation = "(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)"

// PostMessage stores text from sender to receiver. The sender must have the
// receiver as a friend and the text must not be blank.
//
// Each message in a conversation gets a timestamp strictly later than the
// previous one, and both friend edges stay locked until the insert commits,
// so messages become visible in timestamp order.
func (s *Service) PostMessage(ctx context.Context, senderID, receiverID uint, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Message text must not be empty")
	}
	if len([]rune(text)) > MaxTextLength {
		return nil, apperr.Validation("Message text must be at most %d characters", MaxTextLength)
	}

	msg := models.Message{SenderID: senderID, ReceiverID: receiverID, Text: text}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var edges []models.Friend
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", senderID, receiverID, receiverID, senderID).
			Order("user_id ASC").
			Find(&edges).Error; err != nil {
			return err
		}
		allowed := false
		for _, e := range edges {
			if e.UserID == senderID {
				allowed = true
			}
		}
		if !allowed {
			return apperr.Forbidden("You can only message your friends")
		}

		ts := s.now().UTC().Truncate(resolution)
		var last models.Message
		err := tx.Where(conversation, senderID, receiverID, receiverID, senderID).
			Order("sent_at DESC, id DESC").
			Take(&last).Error
		switch {
		case err == nil:
			if prev := last.Timestamp.UTC(); !ts.After(prev) {
				ts = prev.Add(resolution)
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		msg.Timestamp = ts
		return tx.Create(&msg).Error
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, errors.Wrap(err, "post message")
	}

	metrics.RecordMessagePosted()
	logging.Log.WithFields(logrus.Fields{
		"message_id":  msg.ID,
		"sender_id":   senderID,
		"receiver_id": receiverID,
	}).Debug("message posted")
	return &msg, nil
}

// ListMessages returns the conversation between userID and otherID in
// ascending timestamp order. When since is set only messages strictly after
// it are returned, so a poller passes the largest timestamp it has seen.
//
// Users who are not friends get an empty list, never an error.
func (s *Service) ListMessages(ctx context.Context, userID, otherID uint, since *time.Time) ([]models.Message, error) {
	messages := []models.Message{}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Friend{}).
		Where("user_id = ? AND friend_id = ?", userID, otherID).
		Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "check friendship")
	}
	if count == 0 {
		return messages, nil
	}

	query := s.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where(conversation, userID, otherID, otherID, userID)
	if since != nil {
		query = query.Where("sent_at > ?", since.UTC())
	}
	if err := query.Order("sent_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	return messages, nil
}
