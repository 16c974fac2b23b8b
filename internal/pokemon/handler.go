package pokemon

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pokedex/internal/catalog"
	"pokedex/internal/query"
	"pokedex/pkg/logging"
)

type Handler struct {
	Catalog *catalog.Service
	Logger  *zap.Logger
}

func NewHandler(svc *catalog.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Catalog: svc, Logger: logger}
}

// RegisterRoutes mounts the catalog under rg, normally the /api group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pokemon", h.list)        // GET /api/pokemon
	rg.GET("/pokemon/:id", h.getByID) // GET /api/pokemon/:id
	rg.GET("/types", h.types)         // GET /api/types
}

func (h *Handler) list(c *gin.Context) {
	// types=fire,flying OR types=fire&types=flying
	types := strings.Join(c.QueryArray("types"), ",")
	q := query.Parse(c.Query("page"), c.Query("limit"), c.Query("search"), types, c.Query("sort"))

	res, err := h.Catalog.List(c.Request.Context(), q)
	if err != nil {
		logging.WithRequest(h.Logger, c).Error("list pokemon failed",
			zap.Int("page", q.Page),
			zap.Int("limit", q.Limit),
			zap.String("search", q.Search),
			zap.Strings("types", q.Types),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Pokemon"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := query.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Pokemon ID"})
		return
	}

	d, err := h.Catalog.Detail(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, d)
	case errors.Is(err, query.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Pokemon ID"})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Pokemon not found"})
	default:
		logging.WithRequest(h.Logger, c).Error("get pokemon failed", zap.Int("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Pokemon details"})
	}
}

func (h *Handler) types(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"types": catalog.Types()})
}
