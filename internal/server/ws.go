package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST API is already open cross-origin; the socket matches it.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsCommand is one client message on the duplex transport.
type wsCommand struct {
	Action string `json:"action"` // answer, skip, end
	Answer string `json:"answer,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// wsAck reports a command's outcome back to the sender. Session events
// arrive separately, as they do on the SSE stream.
type wsAck struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// handleWS runs a session over a single WebSocket: events flow down, and
// answer/skip/end commands flow up.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	o, err := s.reg.Get(id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageSize)

	history, live := s.hub.Subscribe(id)
	if live != nil {
		defer s.hub.Unsubscribe(id, live)
	}

	// Both pumps write to the connection: events down, acks back. gorilla
	// connections allow one writer at a time.
	var writeMu sync.Mutex
	write := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
			return err
		}
		return conn.WriteJSON(v)
	}

	g, ctx := errgroup.WithContext(r.Context())

	// write pump: history first, then live events
	g.Go(func() error {
		for _, e := range history {
			if err := write(e); err != nil {
				return err
			}
		}
		if live == nil {
			return nil
		}
		for {
			select {
			case e, ok := <-live:
				if !ok {
					return nil
				}
				if err := write(e); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	// read pump: commands from the client
	g.Go(func() error {
		for {
			var cmd wsCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return err
			}

			var cmdErr error
			switch cmd.Action {
			case "answer":
				cmdErr = o.SubmitAnswer(ctx, cmd.Answer)
			case "skip":
				cmdErr = o.Skip(ctx)
			case "end":
				reason := cmd.Reason
				if reason == "" {
					reason = "ended by user"
				}
				cmdErr = o.EndEarly(reason)
			default:
				cmdErr = &ErrValidation{Field: "action", Message: "unsupported action"}
			}

			ack := wsAck{Action: cmd.Action, OK: cmdErr == nil}
			if cmdErr != nil {
				ack.Error = cmdErr.Error()
			}
			if err := write(ack); err != nil {
				return err
			}
		}
	})

	if err := g.Wait(); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && err != context.Canceled {
		log.Printf("websocket session %s: %v", id, err)
	}
}
