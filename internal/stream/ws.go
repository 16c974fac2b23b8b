// Package stream serves listing pages over a WebSocket so an infinite
// scroll can pull page after page on one connection.
//
// The client sends a query message, then {"type":"next"} for every
// further page. Each message is answered by exactly one frame.
package stream

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pokedex/internal/catalog"
	"pokedex/internal/query"
	"pokedex/pkg/logging"
	"pokedex/pkg/models"
)

const maxMessageSize = 4096

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware already vets browser origins
	},
}

// Frame types.
const (
	FrameWelcome = "welcome"
	FramePage    = "page"
	FrameEnd     = "end"
	FrameError   = "error"
)

// Request is a client message. Type "next" advances the last query by one
// page; anything else starts a new query from the remaining fields.
type Request struct {
	Type   string   `json:"type,omitempty"`
	Page   int      `json:"page,omitempty"`
	Limit  int      `json:"limit,omitempty"`
	Search string   `json:"search,omitempty"`
	Types  []string `json:"types,omitempty"`
	Sort   string   `json:"sort,omitempty"`
}

// Frame is a server message. Page frames carry the listing inline.
type Frame struct {
	Type string `json:"type"`
	*models.ListResult
	Error string `json:"error,omitempty"`
}

func Handler(svc *catalog.Service, hub *Hub, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		log := logging.WithRequest(logger, c)

		hub.Add(ws)
		log.Debug("stream client connected", zap.Int("clients", hub.Count()))
		defer func() {
			hub.Remove(ws)
			log.Debug("stream client disconnected")
		}()

		ws.SetReadLimit(maxMessageSize)
		if err := ws.WriteJSON(Frame{Type: FrameWelcome}); err != nil {
			return
		}

		s := session{svc: svc, log: log}
		for {
			_, payload, err := ws.ReadMessage()
			if err != nil {
				break
			}
			if err := ws.WriteJSON(s.handle(c, payload)); err != nil {
				break
			}
		}
	}
}

// session is the per-connection cursor.
type session struct {
	svc  *catalog.Service
	log  *zap.Logger
	last *query.ListQuery
	more bool
}

func (s *session) handle(c *gin.Context, payload []byte) Frame {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return Frame{Type: FrameError, Error: "invalid message"}
	}

	var q query.ListQuery
	if strings.EqualFold(strings.TrimSpace(req.Type), "next") {
		if s.last == nil {
			return Frame{Type: FrameError, Error: "no query to continue"}
		}
		if !s.more {
			return Frame{Type: FrameEnd}
		}
		q = *s.last
		q.Page++
	} else {
		q = query.New(req.Page, req.Limit, req.Search, req.Types, req.Sort)
	}

	res, err := s.svc.List(c.Request.Context(), q)
	if err != nil {
		s.log.Error("stream page failed", zap.Int("page", q.Page), zap.Error(err))
		return Frame{Type: FrameError, Error: "Failed to fetch Pokemon"}
	}
	s.last, s.more = &q, res.Pagination.HasMore
	return Frame{Type: FramePage, ListResult: &res}
}
