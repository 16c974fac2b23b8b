package mirror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves stored documents under PokeAPI's own paths, so a
// pokeapi.Client pointed at http://host/api/v2 cannot tell the difference.
type Handler struct {
	Store  *Store
	Logger *zap.Logger
}

func NewHandler(store *Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Store: store, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/api/v2/*path", h.get) // GET /api/v2/pokemon/25/
}

func (h *Handler) get(c *gin.Context) {
	key := Key(c.Param("path"), c.Request.URL.RawQuery)

	doc, err := h.Store.Get(c.Request.Context(), key)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "path": key})
		return
	}
	if err != nil {
		h.Logger.Error("mirror read failed", zap.String("path", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}

	c.Header("Last-Modified", doc.FetchedAt.UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc.Body)
}
