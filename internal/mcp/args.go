package mcp

import (
	rnet "github.com/peterkuimelis/regicide/internal/net"
)

type startArgs struct {
	Players int    `json:"players"`
	Seed    uint64 `json:"seed"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type cardsArgs struct {
	SessionID string `json:"session_id"`
	Indices   []int  `json:"indices"`
}

type nominateArgs struct {
	SessionID string `json:"session_id"`
	Player    int    `json:"player"`
}

// decodeArgs fills out from a tool's raw argument map.
func decodeArgs(raw map[string]any, out any) error {
	return rnet.DecodeLoose(raw, out)
}
