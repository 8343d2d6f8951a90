package handler

import (
	"net/http"

	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/session"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// FavoritesCountResponse answers the lightweight favorite toggle.
type FavoritesCountResponse struct {
	Status         string `json:"status" example:"ok"`
	FavoritesCount int    `json:"favorites_count" example:"3"`
}

// endregion

// region --- Favorites Handlers ---

// GetFavorites godoc
// @Summary      List favorites
// @Description  Lists the session's favorite games in the order they were added.
// @Tags         favorites
// @Produce      json
// @Success      200 {array}  GameResponse
// @Router       /favorites [get]
func GetFavorites(c *gin.Context) {
	respondFavorites(c)
}

// AddFavorite godoc
// @Summary      Add a favorite
// @Description  Adds a game to the session's favorites. Adding it twice changes nothing.
// @Tags         favorites
// @Produce      json
// @Param        gameID path int true "Game ID"
// @Success      200 {array}  GameResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /favorites/{gameID} [post]
func AddFavorite(c *gin.Context) {
	if _, ok := addFavorite(c); !ok {
		return
	}
	respondFavorites(c)
}

// AddFavoriteAjax godoc
// @Summary      Add a favorite (lightweight)
// @Description  Adds a game to the session's favorites and returns only the new count.
// @Tags         favorites
// @Produce      json
// @Param        gameID path int true "Game ID"
// @Success      200 {object} FavoritesCountResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /favorites/{gameID}/ajax [post]
func AddFavoriteAjax(c *gin.Context) {
	ids, ok := addFavorite(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, FavoritesCountResponse{Status: "ok", FavoritesCount: len(ids)})
}

// RemoveFavorite godoc
// @Summary      Remove a favorite
// @Description  Removes a game from the session's favorites.
// @Tags         favorites
// @Produce      json
// @Param        gameID path int true "Game ID"
// @Success      200 {array}  GameResponse
// @Failure      400 {object} ErrorResponse
// @Router       /favorites/{gameID} [delete]
func RemoveFavorite(c *gin.Context) {
	gameID, ok := idParam(c, "gameID")
	if !ok {
		return
	}
	if err := carts.RemoveFavorite(c.Request.Context(), session.ID(c), gameID); err != nil {
		respondError(c, err)
		return
	}
	respondFavorites(c)
}

// endregion

// region --- Cart Handlers ---

// GetCart godoc
// @Summary      View the cart
// @Description  Lists the games in the session cart and their total sell price.
// @Tags         cart
// @Produce      json
// @Success      200 {object} CartResponse
// @Router       /cart [get]
func GetCart(c *gin.Context) {
	respondCart(c)
}

// AddToCart godoc
// @Summary      Add to cart
// @Description  Puts a game in the session cart. A game is only ever in the cart once.
// @Tags         cart
// @Produce      json
// @Param        gameID path int true "Game ID"
// @Success      200 {object} CartResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /cart/{gameID} [post]
func AddToCart(c *gin.Context) {
	gameID, ok := existingGameParam(c)
	if !ok {
		return
	}
	if err := carts.MergeCart(c.Request.Context(), session.ID(c), gameID); err != nil {
		respondError(c, err)
		return
	}
	respondCart(c)
}

// RemoveFromCart godoc
// @Summary      Remove from cart
// @Description  Takes a game out of the session cart.
// @Tags         cart
// @Produce      json
// @Param        gameID path int true "Game ID"
// @Success      200 {object} CartResponse
// @Failure      400 {object} ErrorResponse
// @Router       /cart/{gameID} [delete]
func RemoveFromCart(c *gin.Context) {
	gameID, ok := idParam(c, "gameID")
	if !ok {
		return
	}
	if err := carts.RemoveFromCart(c.Request.Context(), session.ID(c), gameID); err != nil {
		respondError(c, err)
		return
	}
	respondCart(c)
}

// endregion

// region --- Helpers ---

// existingGameParam parses the gameID path parameter and checks that the
// game is in the catalog.
func existingGameParam(c *gin.Context) (uint, bool) {
	gameID, ok := idParam(c, "gameID")
	if !ok {
		return 0, false
	}
	exists, err := games.Exists(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	if !exists {
		respondError(c, apperr.NotFound("Game not found"))
		return 0, false
	}
	return gameID, true
}

func addFavorite(c *gin.Context) ([]uint, bool) {
	gameID, ok := existingGameParam(c)
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()
	sid := session.ID(c)
	if err := carts.AddFavorite(ctx, sid, gameID); err != nil {
		respondError(c, err)
		return nil, false
	}
	ids, err := carts.Favorites(ctx, sid)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return ids, true
}

func respondFavorites(c *gin.Context) {
	ctx := c.Request.Context()
	ids, err := carts.Favorites(ctx, session.ID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := games.GamesByIDs(ctx, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	byID := make(map[uint]models.Game, len(list))
	for _, g := range list {
		byID[g.ID] = g
	}
	favorites := make(map[uint]bool, len(ids))
	ordered := make([]models.Game, 0, len(list))
	for _, id := range ids {
		favorites[id] = true
		if g, ok := byID[id]; ok {
			ordered = append(ordered, g)
		}
	}
	c.JSON(http.StatusOK, newGameResponses(ordered, favorites))
}

func respondCart(c *gin.Context) {
	sum, err := checkouts.Summary(c.Request.Context(), session.ID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CartResponse{
		Games: newGameResponses(sum.Games, favoriteSet(c)),
		Total: sum.Total,
	})
}

// endregion
