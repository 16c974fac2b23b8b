package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokedex/internal/catalog"
	"pokedex/internal/catalog/catalogtest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func dial(t *testing.T, src *catalogtest.Fake) (*websocket.Conn, *Hub) {
	t.Helper()
	hub := NewHub()
	r := gin.New()
	svc := catalog.NewService(src, catalog.DefaultOptions(), nil)
	r.GET("/api/pokemon/stream", Handler(svc, hub, nil))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/pokemon/stream"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	var hello Frame
	require.NoError(t, ws.ReadJSON(&hello))
	require.Equal(t, FrameWelcome, hello.Type)
	return ws, hub
}

func roundTrip(t *testing.T, ws *websocket.Conn, msg any) Frame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	switch m := msg.(type) {
	case string:
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(m)))
	default:
		require.NoError(t, ws.WriteJSON(m))
	}
	var f Frame
	require.NoError(t, ws.ReadJSON(&f))
	return f
}

func TestScrollThroughPages(t *testing.T) {
	ws, hub := dial(t, catalogtest.NewFake())
	assert.Equal(t, 1, hub.Count())

	f := roundTrip(t, ws, Request{Limit: 5})
	require.Equal(t, FramePage, f.Type)
	require.NotNil(t, f.ListResult)
	assert.Len(t, f.Pokemon, 5)
	assert.Equal(t, 1, f.Pagination.CurrentPage)
	assert.True(t, f.Pagination.HasMore)

	f = roundTrip(t, ws, Request{Type: "next"})
	require.Equal(t, FramePage, f.Type)
	assert.Equal(t, 2, f.Pagination.CurrentPage)
	assert.Equal(t, 6, f.Pokemon[0].ID)

	f = roundTrip(t, ws, Request{Type: "next"})
	require.Equal(t, FramePage, f.Type)
	assert.Len(t, f.Pokemon, 2)
	assert.False(t, f.Pagination.HasMore)

	f = roundTrip(t, ws, Request{Type: "next"})
	assert.Equal(t, FrameEnd, f.Type)
	assert.Nil(t, f.ListResult)
}

func TestNewQueryResetsCursor(t *testing.T) {
	ws, _ := dial(t, catalogtest.NewFake())

	f := roundTrip(t, ws, Request{Limit: 2, Search: "char"})
	require.Equal(t, FramePage, f.Type)
	assert.Equal(t, 3, f.Pagination.Total)

	f = roundTrip(t, ws, Request{Types: []string{"fire", "flying"}})
	require.Equal(t, FramePage, f.Type)
	require.Len(t, f.Pokemon, 1)
	assert.Equal(t, "charizard", f.Pokemon[0].Name)

	f = roundTrip(t, ws, Request{Type: "next"})
	assert.Equal(t, FrameEnd, f.Type)
}

func TestErrorFramesKeepConnectionOpen(t *testing.T) {
	src := catalogtest.NewFake()
	ws, _ := dial(t, src)

	f := roundTrip(t, ws, Request{Type: "next"})
	assert.Equal(t, Frame{Type: FrameError, Error: "no query to continue"}, f)

	f = roundTrip(t, ws, "{not json")
	assert.Equal(t, Frame{Type: FrameError, Error: "invalid message"}, f)

	src.SetListErr(catalogtest.Upstream500("pokemon"))
	f = roundTrip(t, ws, Request{})
	assert.Equal(t, Frame{Type: FrameError, Error: "Failed to fetch Pokemon"}, f)

	src.SetListErr(nil)
	f = roundTrip(t, ws, Request{Limit: 1})
	assert.Equal(t, FramePage, f.Type)
}

func TestHubCloseAll(t *testing.T) {
	ws, hub := dial(t, catalogtest.NewFake())
	hub.CloseAll()
	assert.Zero(t, hub.Count())

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
