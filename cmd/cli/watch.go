package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pokedex/internal/stream"
)

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

// watch scrolls the listing over the stream socket, handing each page to
// onPage, until the listing ends or maxPages pages were read (0 = all).
func watch(ctx context.Context, baseURL string, p listParams, maxPages int, onPage func(stream.Frame) error) error {
	wsURL, err := websocketURL(baseURL, "/api/pokemon/stream")
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Debug("stream connected", zap.String("url", wsURL))

	// unblock reads on cancellation
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var hello stream.Frame
	if err := conn.ReadJSON(&hello); err != nil {
		return err
	}
	if hello.Type != stream.FrameWelcome {
		return fmt.Errorf("unexpected first frame %q", hello.Type)
	}

	req := stream.Request{Page: p.Page, Limit: p.Limit, Search: p.Search, Types: p.Types, Sort: p.Sort}
	for pages := 0; maxPages == 0 || pages < maxPages; pages++ {
		if err := conn.WriteJSON(req); err != nil {
			return err
		}
		var f stream.Frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		switch f.Type {
		case stream.FramePage:
			if err := onPage(f); err != nil {
				return err
			}
			if !f.Pagination.HasMore {
				return nil
			}
		case stream.FrameEnd:
			return nil
		case stream.FrameError:
			return errors.New(f.Error)
		}
		req = stream.Request{Type: "next"}
	}
	return nil
}
