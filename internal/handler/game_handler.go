package handler

import (
	"net/http"

	"gamevault/backend/internal/catalog"
	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/session"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// GameInput is the admin payload for creating or replacing a game.
type GameInput struct {
	Title       string   `json:"title" binding:"required,max=100" example:"Portal"`
	Description string   `json:"description"`
	Genre       string   `json:"genre" binding:"max=50" example:"Puzzle"`
	ReleaseYear int      `json:"release_year" example:"2007"`
	Rating      float64  `json:"rating" example:"9.1"`
	Image       string   `json:"image" example:"games/portal.png"`
	Price       int64    `json:"price" binding:"min=0" example:"1999"`
	Discount    int      `json:"discount" binding:"min=0,max=100" example:"25"`
	Screenshots []string `json:"screenshots"`
}

func (in GameInput) toCatalog() catalog.GameInput {
	return catalog.GameInput{
		Title:       in.Title,
		Description: in.Description,
		Genre:       in.Genre,
		ReleaseYear: in.ReleaseYear,
		Rating:      in.Rating,
		Image:       in.Image,
		Price:       in.Price,
		Discount:    in.Discount,
		Screenshots: in.Screenshots,
	}
}

// ReviewInput is a review left on a game.
type ReviewInput struct {
	Text   string `json:"text" binding:"required" example:"Great puzzles"`
	Rating int    `json:"rating" binding:"required,min=1,max=5" example:"5"`
}

// GameListResponse is one page of the catalog plus the genres to filter by.
type GameListResponse struct {
	Data   []GameResponse `json:"data"`
	Meta   PaginationMeta `json:"meta"`
	Genres []string       `json:"genres"`
}

// endregion

// region --- Admin Handlers ---

// CreateGame godoc
// @Summary      Create a new game
// @Description  Adds a game to the catalog with optional screenshots.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameDetailResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/games [post]
func CreateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	game, err := games.Create(c.Request.Context(), input.toCatalog())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGameDetailResponse(c, *game))
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Replaces a game's details and screenshots.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int       true  "Game ID"
// @Param        input body      GameInput true  "New Game Info"
// @Success      200   {object}  GameDetailResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Admin access required"
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /admin/games/{id} [put]
func UpdateGame(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	game, err := games.Update(c.Request.Context(), id, input.toCatalog())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameDetailResponse(c, *game))
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Deletes an existing game.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id} [delete]
func DeleteGame(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := games.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Game deleted"})
}

// endregion

// region --- Public Handlers ---

// GetGames godoc
// @Summary      List games
// @Description  Lists the catalog ordered by title, filtered by title substring and genre.
// @Tags         games
// @Produce      json
// @Param        q     query     string  false  "Title contains (case-insensitive)"
// @Param        genre query     string  false  "Exact genre"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(3)
// @Success      200   {object}  GameListResponse
// @Router       /games [get]
func GetGames(c *gin.Context) {
	ctx := c.Request.Context()
	page, limit := pageParams(c, catalog.DefaultLimit, catalog.MaxLimit)

	list, total, err := games.List(ctx, catalog.ListFilter{
		Query: c.Query("q"),
		Genre: c.Query("genre"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	genres, err := games.Genres(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	paged := NewPaginatedResponse(newGameResponses(list, favoriteSet(c)), total, page, limit)
	if genres == nil {
		genres = []string{}
	}
	c.JSON(http.StatusOK, GameListResponse{Data: paged.Data, Meta: paged.Meta, Genres: genres})
}

// GetGameByID godoc
// @Summary      Get a single game by ID
// @Description  Retrieves a game with screenshots, reviews and whether it is in the session's favorites.
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} GameDetailResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGameByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	game, err := games.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameDetailResponse(c, *game))
}

// AddReview godoc
// @Summary      Review a game
// @Description  Adds a review with a rating from 1 to 5.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id    path int         true "Game ID"
// @Param        input body ReviewInput true "Review"
// @Success      201 {object} ReviewResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/reviews [post]
func AddReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := games.AddReview(c.Request.Context(), id, catalog.ReviewInput{Text: input.Text, Rating: input.Rating})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newReviewResponse(*review))
}

// endregion

// region --- Helpers ---

// favoriteSet returns the session's favorite game ids. A failing store only
// loses the favorite flags, not the page.
func favoriteSet(c *gin.Context) map[uint]bool {
	ids, err := carts.Favorites(c.Request.Context(), session.ID(c))
	if err != nil {
		logging.Log.WithError(err).Warn("failed to load favorites")
		return nil
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func newGameDetailResponse(c *gin.Context, game models.Game) GameDetailResponse {
	shots := make([]string, 0, len(game.Screenshots))
	for _, s := range game.Screenshots {
		shots = append(shots, s.Image)
	}
	reviews := make([]ReviewResponse, 0, len(game.Reviews))
	for _, r := range game.Reviews {
		reviews = append(reviews, newReviewResponse(r))
	}
	return GameDetailResponse{
		GameResponse: newGameResponse(game, favoriteSet(c)),
		Screenshots:  shots,
		Reviews:      reviews,
	}
}

// endregion
