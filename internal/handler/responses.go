package handler

import (
	"time"

	"gamevault/backend/internal/models"
)

// region --- DTOs ---

// UserSummary is how other users appear in lists.
type UserSummary struct {
	ID       uint      `json:"id" example:"2"`
	Username string    `json:"username" example:"bob"`
	Nickname string    `json:"nickname" example:"Bobby"`
	Avatar   string    `json:"avatar" example:"avatars/default.png"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

func newUserSummary(u models.User, now time.Time) UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Nickname: u.Profile.Nickname,
		Avatar:   u.Profile.Avatar,
		IsOnline: u.Profile.IsOnline(now),
		LastSeen: u.Profile.LastSeen,
	}
}

// ProfileResponse is the authenticated user's own profile. Status is the
// last state written at login or logout; IsOnline is derived from LastSeen.
type ProfileResponse struct {
	ID       uint      `json:"id" example:"1"`
	Username string    `json:"username" example:"alice"`
	Email    string    `json:"email" example:"alice@example.com"`
	Nickname string    `json:"nickname" example:"alice"`
	Avatar   string    `json:"avatar" example:"avatars/default.png"`
	Bio      string    `json:"bio"`
	Status   string    `json:"status" example:"online"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

func newProfileResponse(u models.User, now time.Time) ProfileResponse {
	return ProfileResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Nickname: u.Profile.Nickname,
		Avatar:   u.Profile.Avatar,
		Bio:      u.Profile.Bio,
		Status:   string(u.Profile.Status),
		IsOnline: u.Profile.IsOnline(now),
		LastSeen: u.Profile.LastSeen,
	}
}

// PublicUserResponse is another user's profile as seen by the viewer.
type PublicUserResponse struct {
	UserSummary
	Bio      string `json:"bio"`
	Relation string `json:"relation" example:"friends"`
}

// FriendRequestResponse is a pending friend request.
type FriendRequestResponse struct {
	ID        uint         `json:"id" example:"5"`
	Sender    *UserSummary `json:"sender,omitempty"`
	Receiver  *UserSummary `json:"receiver,omitempty"`
	Status    string       `json:"status" example:"pending"`
	CreatedAt time.Time    `json:"created_at"`
}

func newFriendRequestResponse(r models.FriendRequest, now time.Time) FriendRequestResponse {
	res := FriendRequestResponse{
		ID:        r.ID,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
	if r.Sender.ID != 0 {
		s := newUserSummary(r.Sender, now)
		res.Sender = &s
	}
	if r.Receiver.ID != 0 {
		s := newUserSummary(r.Receiver, now)
		res.Receiver = &s
	}
	return res
}

// FriendRequestsResponse groups the viewer's pending requests.
type FriendRequestsResponse struct {
	Incoming []FriendRequestResponse `json:"incoming"`
	Outgoing []FriendRequestResponse `json:"outgoing"`
}

// ChatMessageResponse is one chat message. Timestamp doubles as the polling
// cursor.
type ChatMessageResponse struct {
	ID         uint      `json:"id" example:"10"`
	SenderID   uint      `json:"sender_id" example:"1"`
	ReceiverID uint      `json:"receiver_id" example:"2"`
	Sender     string    `json:"sender" example:"alice"`
	Receiver   string    `json:"receiver" example:"bob"`
	Text       string    `json:"text" example:"hi"`
	Timestamp  time.Time `json:"timestamp" example:"2025-03-01T12:00:00.000001Z"`
	IsRead     bool      `json:"is_read"`
}

func newChatMessageResponse(m models.Message) ChatMessageResponse {
	return ChatMessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Sender:     m.Sender.Username,
		Receiver:   m.Receiver.Username,
		Text:       m.Text,
		Timestamp:  m.Timestamp.UTC(),
		IsRead:     m.IsRead,
	}
}

// GameResponse is a catalog entry. Prices are in minor currency units.
type GameResponse struct {
	ID          uint    `json:"id" example:"1"`
	Title       string  `json:"title" example:"Portal"`
	Description string  `json:"description"`
	Genre       string  `json:"genre" example:"Puzzle"`
	ReleaseYear int     `json:"release_year" example:"2007"`
	Rating      float64 `json:"rating" example:"9.1"`
	Image       string  `json:"image"`
	Price       int64   `json:"price" example:"1999"`
	Discount    int     `json:"discount" example:"25"`
	SellPrice   int64   `json:"sell_price" example:"1499"`
	IsFavorite  bool    `json:"is_favorite"`
}

func newGameResponse(game models.Game, favoriteIDs map[uint]bool) GameResponse {
	return GameResponse{
		ID:          game.ID,
		Title:       game.Title,
		Description: game.Description,
		Genre:       game.Genre,
		ReleaseYear: game.ReleaseYear,
		Rating:      game.Rating,
		Image:       game.Image,
		Price:       game.Price,
		Discount:    game.Discount,
		SellPrice:   game.SellPrice(),
		IsFavorite:  favoriteIDs[game.ID],
	}
}

func newGameResponses(list []models.Game, favoriteIDs map[uint]bool) []GameResponse {
	out := make([]GameResponse, 0, len(list))
	for _, g := range list {
		out = append(out, newGameResponse(g, favoriteIDs))
	}
	return out
}

// ReviewResponse is a review on a game.
type ReviewResponse struct {
	ID        uint      `json:"id" example:"3"`
	Text      string    `json:"text" example:"Great puzzles"`
	Rating    int       `json:"rating" example:"5"`
	CreatedAt time.Time `json:"created_at"`
}

func newReviewResponse(r models.Review) ReviewResponse {
	return ReviewResponse{ID: r.ID, Text: r.Text, Rating: r.Rating, CreatedAt: r.CreatedAt}
}

// GameDetailResponse is a game with its screenshots and reviews.
type GameDetailResponse struct {
	GameResponse
	Screenshots []string         `json:"screenshots"`
	Reviews     []ReviewResponse `json:"reviews"`
}

// ProfileOverviewResponse is everything the profile page shows.
type ProfileOverviewResponse struct {
	Profile          ProfileResponse         `json:"profile"`
	PurchasedGames   []GameResponse          `json:"purchased_games"`
	Friends          []UserSummary           `json:"friends"`
	IncomingRequests []FriendRequestResponse `json:"incoming_requests"`
	OutgoingRequests []FriendRequestResponse `json:"outgoing_requests"`
}

// CartResponse is the session cart with its total.
type CartResponse struct {
	Games []GameResponse `json:"games"`
	Total int64          `json:"total" example:"2998"`
}

// endregion
