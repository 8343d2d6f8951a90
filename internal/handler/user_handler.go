package handler

import (
	"net/http"
	"time"

	"gamevault/backend/internal/account"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// UpdateProfileInput holds the editable profile fields. Omitted fields are
// left unchanged.
type UpdateProfileInput struct {
	Nickname *string `json:"nickname" binding:"omitempty,max=50" example:"Ally"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=255" example:"avatars/ally.png"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000" example:"Speedrunner"`
}

// PaginatedUserResponse defines the structure for a paginated list of users.
type PaginatedUserResponse struct {
	Data []PublicUserResponse `json:"data"`
	Meta PaginationMeta       `json:"meta"`
}

// endregion

// region --- Profile Handlers ---

// GetProfile godoc
// @Summary      Get current user's profile
// @Description  Returns the authenticated user's profile with presence derived from last_seen.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /profile [get]
func GetProfile(c *gin.Context) {
	user, err := accounts.User(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(*user, time.Now()))
}

// GetProfileOverview godoc
// @Summary      Get the profile page
// @Description  Returns the profile together with purchased games, friends and pending friend requests.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ProfileOverviewResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /profile/overview [get]
func GetProfileOverview(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	now := time.Now()

	user, err := accounts.User(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	owned, err := accounts.PurchasedGames(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	friends, err := friendships.Friends(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	requests, err := pendingRequests(c, userID, now)
	if err != nil {
		respondError(c, err)
		return
	}

	friendList := make([]UserSummary, 0, len(friends))
	for _, f := range friends {
		friendList = append(friendList, newUserSummary(f, now))
	}

	c.JSON(http.StatusOK, ProfileOverviewResponse{
		Profile:          newProfileResponse(*user, now),
		PurchasedGames:   newGameResponses(owned, nil),
		Friends:          friendList,
		IncomingRequests: requests.Incoming,
		OutgoingRequests: requests.Outgoing,
	})
}

// UpdateProfile godoc
// @Summary      Edit current user's profile
// @Description  Updates nickname, avatar and bio. Nicknames are unique and at most 50 characters.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Profile fields"
// @Success      200  {object}  ProfileResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Nickname already taken"
// @Router       /profile [put]
func UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := currentUserID(c)
	if _, err := accounts.UpdateProfile(ctx, userID, account.ProfileUpdate{
		Nickname: input.Nickname,
		Avatar:   input.Avatar,
		Bio:      input.Bio,
	}); err != nil {
		respondError(c, err)
		return
	}

	user, err := accounts.User(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(*user, time.Now()))
}

// endregion

// region --- User Handlers ---

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches users by nickname or username, excluding the viewer, with their relation to the viewer.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedUserResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	ctx := c.Request.Context()
	viewerID := currentUserID(c)
	page, limit := pageParams(c, 10, 100)

	users, total, err := accounts.SearchUsers(ctx, c.Query("q"), viewerID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	data := make([]PublicUserResponse, 0, len(users))
	for _, u := range users {
		relation, err := friendships.Status(ctx, viewerID, u.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		data = append(data, PublicUserResponse{
			UserSummary: newUserSummary(u, now),
			Bio:         u.Profile.Bio,
			Relation:    string(relation),
		})
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(data, total, page, limit))
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves another user's public profile and how they relate to the viewer.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	targetID, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := accounts.User(ctx, targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	relation, err := friendships.Status(ctx, currentUserID(c), targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PublicUserResponse{
		UserSummary: newUserSummary(*user, time.Now()),
		Bio:         user.Profile.Bio,
		Relation:    string(relation),
	})
}

// endregion
