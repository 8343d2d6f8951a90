package handler

import (
	"net/http"

	"gamevault/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// PostMessageInput is a chat message to send.
type PostMessageInput struct {
	Text string `json:"text" binding:"required,max=2000" example:"hi"`
}

// ChatPollResponse wraps a batch of messages for polling clients.
type ChatPollResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
}

// endregion

// region --- Chat Handlers ---

// PollChatMessages godoc
// @Summary      Poll a conversation
// @Description  Returns messages exchanged with a friend in ascending order. Pass the largest timestamp already received as since (or last_time) to get only newer messages; unparsable values return the full history. Non-friends get an empty list.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        userID    path   int     true   "Friend user ID"
// @Param        since     query  string  false  "RFC 3339 cursor, exclusive"
// @Param        last_time query  string  false  "Alias of since"
// @Success      200 {object} ChatPollResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /chat/{userID}/messages [get]
func PollChatMessages(c *gin.Context) {
	messages, ok := listConversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ChatPollResponse{Messages: messages})
}

// GetMessages godoc
// @Summary      List a conversation
// @Description  Returns every message exchanged with a friend, oldest first. Non-friends get an empty list.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        userID path  int     true   "Friend user ID"
// @Param        since  query string  false  "RFC 3339 cursor, exclusive"
// @Success      200 {array}  ChatMessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /messages/{userID} [get]
func GetMessages(c *gin.Context) {
	messages, ok := listConversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, messages)
}

// PostChatMessage godoc
// @Summary      Send a chat message
// @Description  Sends a message to a friend.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userID path int              true "Friend user ID"
// @Param        input  body PostMessageInput true "Message"
// @Success      201 {object} ChatMessageResponse
// @Failure      400 {object} ErrorResponse "Blank text"
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not friends"
// @Router       /chat/{userID}/messages [post]
func PostChatMessage(c *gin.Context) {
	receiverID, ok := idParam(c, "userID")
	if !ok {
		return
	}
	var input PostMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := chats.PostMessage(c.Request.Context(), currentUserID(c), receiverID, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newChatMessageResponse(*msg))
}

// endregion

// region --- Helpers ---

func listConversation(c *gin.Context) ([]ChatMessageResponse, bool) {
	otherID, ok := idParam(c, "userID")
	if !ok {
		return nil, false
	}

	messages, err := chats.ListMessages(c.Request.Context(), currentUserID(c), otherID, parseCursor(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return chatMessageResponses(messages), true
}

func chatMessageResponses(messages []models.Message) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, newChatMessageResponse(m))
	}
	return out
}

// endregion
