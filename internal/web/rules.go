package web

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/peterkuimelis/regicide/internal/config"
	"github.com/peterkuimelis/regicide/internal/game"
)

// maxRulesBody bounds an uploaded rules file.
const maxRulesBody = 64 << 10

// RulesInfo is the JSON representation of a rule set.
type RulesInfo struct {
	Players       int         `json:"players"`
	MaxHandSize   int         `json:"max_hand_size"`
	TavernJesters int         `json:"tavern_jesters"`
	JesterCharges int         `json:"jester_charges"`
	LogTail       int         `json:"log_tail"`
	Enemies       []EnemyInfo `json:"enemies"`
}

// EnemyInfo is one row of the enemy table.
type EnemyInfo struct {
	Rank   string `json:"rank"`
	HP     int    `json:"hp"`
	Attack int    `json:"attack"`
}

// NewRulesInfo converts a rule set for display.
func NewRulesInfo(r game.Rules) RulesInfo {
	info := RulesInfo{
		Players:       r.Players,
		MaxHandSize:   r.MaxHandSize,
		TavernJesters: r.TavernJesters,
		JesterCharges: r.JesterCharges,
		LogTail:       r.LogTail,
	}
	ranks := make([]game.Rank, 0, len(r.Enemies))
	for rank := range r.Enemies {
		ranks = append(ranks, rank)
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })
	for _, rank := range ranks {
		stats := r.Enemies[rank]
		info.Enemies = append(info.Enemies, EnemyInfo{
			Rank:   strings.ToLower(rank.Name()),
			HP:     stats.HP,
			Attack: stats.Attack,
		})
	}
	return info
}

func (s *Server) handleRules(c *gin.Context) {
	c.JSON(http.StatusOK, NewRulesInfo(s.opts.Rules))
}

// handleCheckRules parses an uploaded YAML rules file and returns the rules
// it would produce, or why they are invalid.
func (s *Server) handleCheckRules(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRulesBody))
	if err != nil {
		badRequest(c, "BAD_REQUEST", err.Error())
		return
	}
	rf, err := config.ParseRulesFile(data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: errorView("BAD_RULES", err)})
		return
	}

	players := s.opts.Rules.Players
	if rf.Players != nil {
		players = *rf.Players
	}
	if players < game.MinPlayers || players > game.MaxPlayers {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error: errorView("BAD_RULES", fmt.Errorf("players must be %d-%d, got %d", game.MinPlayers, game.MaxPlayers, players)),
		})
		return
	}
	rules := rf.Apply(game.DefaultRules(players))
	if err := rules.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: errorView("BAD_RULES", err)})
		return
	}
	c.JSON(http.StatusOK, NewRulesInfo(rules))
}
