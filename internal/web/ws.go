package web

import (
	"context"
	"encoding/json"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	rnet "github.com/peterkuimelis/regicide/internal/net"
)

// handleWebSocket attaches a browser to one seat of a game. Frames in both
// directions are the JSON messages of the TCP protocol, one per frame.
func (s *Server) handleWebSocket(c *gin.Context) {
	g, err := s.games.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	seat, err := seatParam(c, g)
	if err != nil {
		badRequest(c, "BAD_SEAT", err.Error())
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.log.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	lg := s.log.With(zap.String("game", g.ID), zap.Int("seat", seat))
	lg.Debug("websocket attached")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := g.Subscribe(seat)
	defer g.Unsubscribe(sub)

	// Replies meant for this connection only.
	direct := make(chan rnet.ServerMessage, 8)

	go func() {
		defer cancel()
		for {
			var msg rnet.ServerMessage
			select {
			case <-ctx.Done():
				return
			case m, ok := <-sub.C():
				if !ok {
					conn.Close(websocket.StatusPolicyViolation, "too far behind")
					return
				}
				msg = m
			case msg = <-direct:
			}
			if err := writeMessage(ctx, conn, msg); err != nil {
				lg.Debug("websocket write", zap.Error(err))
				return
			}
			if msg.Type == rnet.MsgGameOver {
				conn.Close(websocket.StatusNormalClosure, "game over")
				return
			}
		}
	}()

	reply := func(msg rnet.ServerMessage) {
		select {
		case direct <- msg:
		case <-ctx.Done():
		}
	}

	limiter := rate.NewLimiter(rate.Limit(s.opts.ActionRate), s.opts.ActionBurst)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			lg.Debug("websocket closed", zap.Error(err))
			return
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			reply(errorFrame("BAD_REQUEST", "frames must be JSON objects"))
			continue
		}
		msg, err := rnet.DecodeClientMessage(raw)
		if err != nil {
			reply(rnet.ErrorMessage(err))
			continue
		}

		if msg.Type == rnet.MsgState {
			reply(rnet.ServerMessage{Type: rnet.MsgState, State: g.State(seat)})
			continue
		}
		if !limiter.Allow() {
			reply(errorFrame("RATE_LIMITED", "too many actions, slow down"))
			continue
		}
		// Accepted actions reach this connection through the subscription.
		if _, err := g.Act(seat, msg); err != nil {
			reply(rnet.ErrorMessage(err))
		}
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg rnet.ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

func errorFrame(code, message string) rnet.ServerMessage {
	return rnet.ServerMessage{Type: rnet.MsgError, Error: &rnet.ErrorView{Code: code, Message: message}}
}
