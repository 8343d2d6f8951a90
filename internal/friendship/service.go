// Package friendship maintains the symmetric friend graph and the set of
// pending friend requests between users.
package friendship

import (
	"context"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/database"
	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/metrics"
	"gamevault/backend/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Outcome is what a SendRequest call changed.
type Outcome string

const (
	// OutcomeNone means the pair was already in the desired state.
	OutcomeNone Outcome = "none"
	// OutcomeRequested means a new pending request was stored.
	OutcomeRequested Outcome = "requested"
	// OutcomeFriends means a reverse request existed and was accepted.
	OutcomeFriends Outcome = "friends"
)

// State is the relation between two users as seen from the first of them.
type State string

const (
	StateNone            State = "none"
	StatePendingOutgoing State = "pending_outgoing"
	StatePendingIncoming State = "pending_incoming"
	StateFriends         State = "friends"
	StateSelf            State = "self"
)

// maxAttempts bounds how often a transaction that lost a race is replayed.
const maxAttempts = 3

// errRaced marks a transaction whose rows were changed by a concurrent one
// between its read and its write.
var errRaced = errors.New("concurrent friendship update")

var forUpdate = clause.Locking{Strength: "UPDATE"}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// transact runs fn in a transaction, replaying it when it lost a race on the
// unique indexes. A unique violation that survives every attempt means a
// concurrent request already produced the rows fn wanted, so it is absorbed.
func (s *Service) transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errRaced) && !database.IsUniqueViolation(err) {
			return err
		}
		logging.Log.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   err,
		}).Debug("friendship transaction raced, retrying")
	}
	if database.IsUniqueViolation(err) {
		return nil
	}
	return errors.Wrap(err, "friendship transaction")
}

// createEdges inserts both directed edges of a friendship, skipping any that
// already exist.
func createEdges(tx *gorm.DB, a, b uint) error {
	edges := []models.Friend{
		{UserID: a, FriendID: b},
		{UserID: b, FriendID: a},
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error
}

// lockPair locks the rows of both users in id order. Every mutation of a
// pair's requests or edges takes this lock first, so they run one at a time
// and each sees what the previous one committed. It returns false when
// either user does not exist.
func lockPair(tx *gorm.DB, a, b uint) (bool, error) {
	low, high := models.OrderedPair(a, b)
	var users []models.User
	if err := tx.Clauses(forUpdate).
		Select("id").
		Where("id IN ?", []uint{low, high}).
		Order("id").
		Find(&users).Error; err != nil {
		return false, err
	}
	return len(users) == 2, nil
}

func pairCondition(left, right string) string {
	return "(" + left + " = ? AND " + right + " = ?) OR (" + left + " = ? AND " + right + " = ?)"
}

// SendRequest asks receiver to become sender's friend. A request to oneself,
// an existing friendship or an existing pending request leave everything as
// it is. A pending request in the opposite direction is accepted instead.
func (s *Service) SendRequest(ctx context.Context, senderID, receiverID uint) (Outcome, error) {
	if senderID == receiverID {
		return OutcomeNone, nil
	}

	var outcome Outcome
	err := s.transact(ctx, func(tx *gorm.DB) error {
		outcome = OutcomeNone

		found, err := lockPair(tx, senderID, receiverID)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound("User not found")
		}

		var edges []models.Friend
		if err := tx.
			Where(pairCondition("user_id", "friend_id"), senderID, receiverID, receiverID, senderID).
			Find(&edges).Error; err != nil {
			return err
		}
		if len(edges) > 0 {
			// Already friends: no request may outlive the friendship, and a
			// missing direction is restored.
			if err := tx.
				Where(pairCondition("sender_id", "receiver_id"), senderID, receiverID, receiverID, senderID).
				Delete(&models.FriendRequest{}).Error; err != nil {
				return err
			}
			if len(edges) < 2 {
				return createEdges(tx, senderID, receiverID)
			}
			return nil
		}

		var requests []models.FriendRequest
		if err := tx.
			Where(pairCondition("sender_id", "receiver_id"), senderID, receiverID, receiverID, senderID).
			Find(&requests).Error; err != nil {
			return err
		}
		for _, req := range requests {
			if req.SenderID == senderID {
				return nil
			}
		}
		// The pair index allows at most one row, so anything left is the
		// reverse request.
		if len(requests) > 0 {
			res := tx.Delete(&models.FriendRequest{}, requests[0].ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errRaced
			}
			if err := createEdges(tx, senderID, receiverID); err != nil {
				return err
			}
			outcome = OutcomeFriends
			return nil
		}

		req := models.FriendRequest{SenderID: senderID, ReceiverID: receiverID}
		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		outcome = OutcomeRequested
		return nil
	})
	if err != nil {
		return OutcomeNone, err
	}

	switch outcome {
	case OutcomeRequested:
		metrics.RecordFriendshipTransition("requested")
	case OutcomeFriends:
		metrics.RecordFriendshipTransition("accepted")
	}
	logging.Log.WithFields(logrus.Fields{
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"outcome":     outcome,
	}).Info("friend request sent")
	return outcome, nil
}

// AcceptRequest resolves a pending request addressed to actingUserID into a
// friendship. Requests that do not exist or belong to someone else are
// reported as not found.
func (s *Service) AcceptRequest(ctx context.Context, requestID, actingUserID uint) (*models.FriendRequest, error) {
	var accepted models.FriendRequest
	err := s.transact(ctx, func(tx *gorm.DB) error {
		var req models.FriendRequest
		if err := tx.
			Where("id = ? AND receiver_id = ?", requestID, actingUserID).
			First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Friend request not found")
			}
			return err
		}
		if _, err := lockPair(tx, req.SenderID, req.ReceiverID); err != nil {
			return err
		}

		res := tx.Delete(&models.FriendRequest{}, req.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errRaced
		}
		if err := createEdges(tx, req.SenderID, req.ReceiverID); err != nil {
			return err
		}
		accepted = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordFriendshipTransition("accepted")
	logging.Log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"sender_id":   accepted.SenderID,
		"receiver_id": accepted.ReceiverID,
	}).Info("friend request accepted")
	accepted.Status = models.RequestAccepted
	return &accepted, nil
}

// RejectRequest discards a request addressed to actingUserID.
func (s *Service) RejectRequest(ctx context.Context, requestID, actingUserID uint) error {
	if err := s.discard(ctx, requestID, "receiver_id", actingUserID); err != nil {
		return err
	}
	metrics.RecordFriendshipTransition("rejected")
	return nil
}

// CancelRequest withdraws a request sent by actingUserID.
func (s *Service) CancelRequest(ctx context.Context, requestID, actingUserID uint) error {
	if err := s.discard(ctx, requestID, "sender_id", actingUserID); err != nil {
		return err
	}
	metrics.RecordFriendshipTransition("cancelled")
	return nil
}

// discard deletes a request in one statement. ownerColumn names the party
// that is allowed to remove it.
func (s *Service) discard(ctx context.Context, requestID uint, ownerColumn string, actingUserID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ?", requestID).
		Where(ownerColumn+" = ?", actingUserID).
		Delete(&models.FriendRequest{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete friend request")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Friend request not found")
	}
	logging.Log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    actingUserID,
	}).Info("friend request discarded")
	return nil
}

// RemoveFriend deletes both directed edges between a and b. Removing a
// friendship that does not exist is not an error.
func (s *Service) RemoveFriend(ctx context.Context, a, b uint) error {
	if a == b {
		return nil
	}
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockPair(tx, a, b); err != nil {
			return err
		}
		res := tx.
			Where(pairCondition("user_id", "friend_id"), a, b, b, a).
			Delete(&models.Friend{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return errors.Wrap(err, "delete friend edges")
	}
	if removed > 0 {
		metrics.RecordFriendshipTransition("removed")
		logging.Log.WithFields(logrus.Fields{
			"user_id":   a,
			"friend_id": b,
		}).Info("friendship removed")
	}
	return nil
}

// Friends returns the users userID is friends with, profiles loaded, oldest
// friendship first.
func (s *Service) Friends(ctx context.Context, userID uint) ([]models.User, error) {
	var edges []models.Friend
	if err := s.db.WithContext(ctx).
		Preload("FriendUser.Profile").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&edges).Error; err != nil {
		return nil, errors.Wrap(err, "list friends")
	}

	friends := make([]models.User, 0, len(edges))
	for _, e := range edges {
		friends = append(friends, e.FriendUser)
	}
	return friends, nil
}

// IncomingRequests lists pending requests addressed to userID, newest first.
func (s *Service) IncomingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := s.db.WithContext(ctx).
		Preload("Sender.Profile").
		Where("receiver_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, errors.Wrap(err, "list incoming requests")
	}
	return requests, nil
}

// OutgoingRequests lists pending requests sent by userID, newest first.
func (s *Service) OutgoingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := s.db.WithContext(ctx).
		Preload("Receiver.Profile").
		Where("sender_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, errors.Wrap(err, "list outgoing requests")
	}
	return requests, nil
}

// AreFriends reports whether a has b as a friend. One direction is enough
// because edges are kept symmetric.
func (s *Service) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Friend{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "check friendship")
	}
	return count > 0, nil
}

// Status returns how viewerID relates to otherID.
func (s *Service) Status(ctx context.Context, viewerID, otherID uint) (State, error) {
	if viewerID == otherID {
		return StateSelf, nil
	}

	friends, err := s.AreFriends(ctx, viewerID, otherID)
	if err != nil {
		return StateNone, err
	}
	if friends {
		return StateFriends, nil
	}

	var req models.FriendRequest
	err = s.db.WithContext(ctx).
		Where(pairCondition("sender_id", "receiver_id"), viewerID, otherID, otherID, viewerID).
		Take(&req).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return StateNone, nil
	case err != nil:
		return StateNone, errors.Wrap(err, "load friend request")
	case req.SenderID == viewerID:
		return StatePendingOutgoing, nil
	default:
		return StatePendingIncoming, nil
	}
}
