package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// SendRequestResponse reports what sending a friend request changed.
type SendRequestResponse struct {
	// Outcome is "requested", "friends" (a reverse request was accepted) or
	// "none" (nothing to do).
	Outcome string `json:"outcome" example:"requested"`
}

// endregion

// region --- Friendship Handlers ---

// SendFriendRequest godoc
// @Summary      Send a friend request
// @Description  Sends a friend request. If the other user already asked, the two become friends instead. Requests to oneself or to existing friends change nothing.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Receiver user ID"
// @Success      200 {object} SendRequestResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /friends/requests/{id} [post]
func SendFriendRequest(c *gin.Context) {
	receiverID, ok := idParam(c, "id")
	if !ok {
		return
	}

	outcome, err := friendships.SendRequest(c.Request.Context(), currentUserID(c), receiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SendRequestResponse{Outcome: string(outcome)})
}

// AcceptFriendRequest godoc
// @Summary      Accept a friend request
// @Description  Accepts a pending request addressed to the current user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Friend request ID"
// @Success      200 {object} FriendRequestResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Friend request not found"
// @Router       /friends/requests/{id}/accept [post]
func AcceptFriendRequest(c *gin.Context) {
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	req, err := friendships.AcceptRequest(c.Request.Context(), requestID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFriendRequestResponse(*req, time.Now()))
}

// RejectFriendRequest godoc
// @Summary      Reject a friend request
// @Description  Discards a pending request addressed to the current user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Friend request ID"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Friend request not found"
// @Router       /friends/requests/{id}/reject [post]
func RejectFriendRequest(c *gin.Context) {
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := friendships.RejectRequest(c.Request.Context(), requestID, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Friend request rejected"})
}

// CancelFriendRequest godoc
// @Summary      Cancel a friend request
// @Description  Withdraws a pending request sent by the current user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Friend request ID"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Friend request not found"
// @Router       /friends/requests/{id}/cancel [post]
func CancelFriendRequest(c *gin.Context) {
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := friendships.CancelRequest(c.Request.Context(), requestID, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Friend request cancelled"})
}

// RemoveFriend godoc
// @Summary      Remove a friend
// @Description  Ends a friendship in both directions. Removing someone who is not a friend succeeds as well.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        userID path int true "Friend user ID"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /friends/{userID} [delete]
func RemoveFriend(c *gin.Context) {
	friendID, ok := idParam(c, "userID")
	if !ok {
		return
	}

	if err := friendships.RemoveFriend(c.Request.Context(), currentUserID(c), friendID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Friend removed"})
}

// GetFriends godoc
// @Summary      List friends
// @Description  Lists the current user's friends with their presence.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  UserSummary
// @Failure      401 {object} ErrorResponse
// @Router       /friends [get]
func GetFriends(c *gin.Context) {
	friends, err := friendships.Friends(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	out := make([]UserSummary, 0, len(friends))
	for _, f := range friends {
		out = append(out, newUserSummary(f, now))
	}
	c.JSON(http.StatusOK, out)
}

// GetFriendRequests godoc
// @Summary      List pending friend requests
// @Description  Lists requests addressed to and sent by the current user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} FriendRequestsResponse
// @Failure      401 {object} ErrorResponse
// @Router       /friends/requests [get]
func GetFriendRequests(c *gin.Context) {
	requests, err := pendingRequests(c, currentUserID(c), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// endregion

// region --- Helpers ---

func pendingRequests(c *gin.Context, userID uint, now time.Time) (*FriendRequestsResponse, error) {
	ctx := c.Request.Context()
	incoming, err := friendships.IncomingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	outgoing, err := friendships.OutgoingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &FriendRequestsResponse{
		Incoming: make([]FriendRequestResponse, 0, len(incoming)),
		Outgoing: make([]FriendRequestResponse, 0, len(outgoing)),
	}
	for _, r := range incoming {
		res.Incoming = append(res.Incoming, newFriendRequestResponse(r, now))
	}
	for _, r := range outgoing {
		res.Outgoing = append(res.Outgoing, newFriendRequestResponse(r, now))
	}
	return res, nil
}

// endregion

