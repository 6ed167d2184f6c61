package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/peterkuimelis/regicide/internal/game"
	rnet "github.com/peterkuimelis/regicide/internal/net"
)

type createGameRequest struct {
	Players int    `json:"players"`
	Seed    uint64 `json:"seed"`
}

type gameResponse struct {
	ID      string           `json:"id"`
	Players int              `json:"players"`
	State   *rnet.StateView  `json:"state"`
	Log     []rnet.EventView `json:"log,omitempty"`
}

type actionRequest struct {
	Seat    *int  `json:"seat"` // defaults to the acting seat
	Indices []int `json:"indices"`
	Player  int   `json:"player"`
}

type actionResponse struct {
	Events   []rnet.EventView `json:"events"`
	State    *rnet.StateView  `json:"state"`
	GameOver bool             `json:"game_over"`
	Result   string           `json:"result,omitempty"`
	Ranking  string           `json:"ranking,omitempty"`
}

type errorResponse struct {
	Error rnet.ErrorView `json:"error"`
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "BAD_REQUEST", err.Error())
		return
	}
	if req.Players < 0 || req.Players > game.MaxPlayers {
		badRequest(c, "BAD_REQUEST", fmt.Sprintf("players must be %d-%d", game.MinPlayers, game.MaxPlayers))
		return
	}

	rules := s.opts.Rules
	if req.Players != 0 && req.Players != rules.Players {
		enemies := rules.Enemies
		rules = game.DefaultRules(req.Players)
		rules.Enemies = enemies
	}
	seed := req.Seed
	if seed == 0 && s.opts.NewSeed != nil {
		seed = s.opts.NewSeed()
	}

	g, err := s.games.Create(rules, seed)
	if err != nil {
		writeError(c, err)
		return
	}
	s.log.Info("game created", zap.String("game", g.ID), zap.Int("players", rules.Players), zap.Uint64("seed", seed))

	c.JSON(http.StatusCreated, gameResponse{
		ID:      g.ID,
		Players: g.Players(),
		State:   g.State(g.ActiveSeat()),
		Log:     g.Log(),
	})
}

func (s *Server) handleGetGame(c *gin.Context) {
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
	c.JSON(http.StatusOK, gameResponse{
		ID:      g.ID,
		Players: g.Players(),
		State:   g.State(seat),
		Log:     g.Log(),
	})
}

// handleGameLog returns the recent event log, as plain text with ?format=text.
func (s *Server) handleGameLog(c *gin.Context) {
	g, err := s.games.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, g.Transcript())
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": g.Log()})
}

func (s *Server) handleDeleteGame(c *gin.Context) {
	if _, err := s.games.Get(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	s.games.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// handleAction serves one action route.
func (s *Server) handleAction(msgType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, err := s.games.Get(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}

		var req actionRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "BAD_REQUEST", err.Error())
			return
		}
		seat := g.ActiveSeat()
		if req.Seat != nil {
			seat = *req.Seat
		}

		msg := rnet.ClientMessage{Type: msgType, Indices: req.Indices, Player: req.Player}
		upd, err := g.Act(seat, msg)
		if err != nil {
			s.log.Debug("action rejected",
				zap.String("game", g.ID), zap.Int("seat", seat), zap.String("type", msgType), zap.Error(err))
			writeError(c, err)
			return
		}

		resp := actionResponse{Events: upd.Events, State: g.State(seat)}
		if resp.Events == nil {
			resp.Events = []rnet.EventView{}
		}
		if g.Over() {
			over := resp.State
			resp.GameOver = true
			resp.Result = over.Result
			resp.Ranking = over.Ranking
			s.log.Info("game over", zap.String("game", g.ID), zap.String("result", over.Result))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// seatParam reads ?seat=N, defaulting to the acting seat.
func seatParam(c *gin.Context, g *Game) (int, error) {
	raw := c.Query("seat")
	if raw == "" {
		return g.ActiveSeat(), nil
	}
	seat, err := strconv.Atoi(raw)
	if err != nil || seat < 0 || seat >= g.Players() {
		return 0, fmt.Errorf("seat must be 0-%d", g.Players()-1)
	}
	return seat, nil
}

func errorView(code string, err error) rnet.ErrorView {
	return rnet.ErrorView{Code: code, Message: err.Error()}
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: rnet.ErrorView{Code: code, Message: message}})
}

// writeError maps an error to a status and the wire error body.
func writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrGameNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: rnet.ErrorView{Code: "GAME_NOT_FOUND", Message: err.Error()}})
		return
	}
	view := *rnet.ErrorMessage(err).Error
	c.JSON(statusFor(view.Code), errorResponse{Error: view})
}

func statusFor(code string) int {
	switch code {
	case "NOT_YOUR_TURN":
		return http.StatusConflict
	case "UNKNOWN_MESSAGE":
		return http.StatusBadRequest
	case "INTERNAL":
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
