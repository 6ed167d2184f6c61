package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/peterkuimelis/regicide/internal/game"
	"github.com/peterkuimelis/regicide/internal/log"
)

// Server hosts one game for TCP clients and, optionally, a local seat.
type Server struct {
	Addr   string
	Rules  game.Rules
	Seed   uint64
	Logger *zap.Logger

	// Local, when set, is seat 0 (the hosting player's own REPL).
	Local net.Conn

	// Ready, when set, receives the listener address once accepting.
	Ready chan<- string

	// Transcript, when set, receives every game event as a text line.
	Transcript io.Writer
}

type inbound struct {
	seat int
	msg  ClientMessage
	err  error
}

// Run listens when remote seats are needed, then runs the game to the end.
func (s *Server) Run(ctx context.Context) error {
	rules := s.rules()
	remote := rules.Players
	if s.Local != nil {
		remote--
	}
	if remote == 0 {
		return s.Serve(ctx, nil)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	return s.Serve(ctx, ln)
}

func (s *Server) rules() game.Rules {
	if s.Rules.Players == 0 {
		return game.SoloRules()
	}
	return s.Rules
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Serve fills every seat (Local first, then connections from ln), deals, and
// relays messages until the game ends or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	lg := s.logger()
	rules := s.rules()

	var seats []*SeatController
	defer func() {
		for _, sc := range seats {
			sc.Close()
		}
	}()

	if s.Local != nil {
		sc := NewSeatController(s.Local, 0)
		if err := sc.Handshake(rules.Players); err != nil {
			return fmt.Errorf("local seat: %w", err)
		}
		seats = append(seats, sc)
	}

	if ln != nil {
		if s.Ready != nil {
			s.Ready <- ln.Addr().String()
		}
		lg.Info("waiting for players", zap.String("addr", ln.Addr().String()), zap.Int("players", rules.Players))
	}
	for len(seats) < rules.Players {
		if ln == nil {
			return errors.New("not enough seats and no listener")
		}
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		sc := NewSeatController(conn, len(seats))
		if err := sc.Handshake(rules.Players); err != nil {
			lg.Warn("handshake failed", zap.Stringer("remote", conn.RemoteAddr()), zap.Error(err))
			conn.Close()
			continue
		}
		lg.Info("player joined", zap.Int("seat", sc.Seat()), zap.String("name", sc.name))
		seats = append(seats, sc)
	}

	var events log.EventLogger = log.NewZapLogger(lg)
	if s.Transcript != nil {
		events = log.NewMultiLogger(events, log.NewTextLogger(s.Transcript))
	}
	engine, err := game.NewEngine(game.EngineConfig{
		Rules:  rules,
		Seed:   s.Seed,
		Logger: events,
	})
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	host := NewHost(engine)

	// Initial deal
	s.broadcast(seats, host, host.Pending())

	inbox := make(chan inbound)
	done := make(chan struct{})
	defer close(done)
	for _, sc := range seats {
		go readLoop(done, sc, inbox)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-inbox:
			sc := seats[in.seat]
			if in.err != nil {
				return fmt.Errorf("%s disconnected: %w", sc.name, in.err)
			}
			if in.msg.Type == MsgState {
				if err := sc.SendState(host); err != nil {
					return fmt.Errorf("send state: %w", err)
				}
				continue
			}

			upd, err := host.Handle(in.seat, in.msg)
			if err != nil {
				lg.Debug("action rejected", zap.Int("seat", in.seat), zap.String("type", in.msg.Type), zap.Error(err))
				if err := sc.Send(ErrorMessage(err)); err != nil {
					return fmt.Errorf("send error: %w", err)
				}
				continue
			}
			s.broadcast(seats, host, upd.Events)

			if host.Over() {
				for _, sc := range seats {
					_ = sc.Send(host.GameOverMessage(sc.Seat()))
				}
				snap := host.Snapshot()
				lg.Info("game over", zap.String("result", snap.Result), zap.Stringer("ranking", snap.Ranking))
				return nil
			}
		}
	}
}

// broadcast sends new events and then each seat's own view.
func (s *Server) broadcast(seats []*SeatController, host *Host, events []EventView) {
	for _, sc := range seats {
		if err := sc.SendEvents(events); err != nil {
			s.logger().Warn("send events", zap.Int("seat", sc.Seat()), zap.Error(err))
			continue
		}
		if err := sc.SendState(host); err != nil {
			s.logger().Warn("send state", zap.Int("seat", sc.Seat()), zap.Error(err))
		}
	}
}

func readLoop(done <-chan struct{}, sc *SeatController, inbox chan<- inbound) {
	for {
		msg, err := sc.Recv()
		select {
		case inbox <- inbound{seat: sc.Seat(), msg: msg, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}
