package net

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
)

// SeatController is the server side of one seat's connection.
type SeatController struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	seat int
	name string
	mu   sync.Mutex // guards enc
}

// NewSeatController creates a controller for the given connection.
func NewSeatController(conn net.Conn, seat int) *SeatController {
	return &SeatController{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
		seat: seat,
		name: fmt.Sprintf("P%d", seat+1),
	}
}

// Seat returns the 0-based seat index.
func (sc *SeatController) Seat() int {
	return sc.seat
}

// Send writes one message. Safe for concurrent use.
func (sc *SeatController) Send(msg ServerMessage) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.enc.Encode(msg)
}

// Recv reads one client message. Only the seat's reader goroutine calls it.
func (sc *SeatController) Recv() (ClientMessage, error) {
	var msg ClientMessage
	err := sc.dec.Decode(&msg)
	return msg, err
}

// Handshake waits for the client's hello and answers with the seat number.
func (sc *SeatController) Handshake(players int) error {
	msg, err := sc.Recv()
	if err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	if msg.Type != MsgHello {
		return fmt.Errorf("expected hello, got %q", msg.Type)
	}
	if msg.Name != "" {
		sc.name = msg.Name
	}
	if err := sc.Send(ServerMessage{Type: MsgWelcome, Seat: sc.seat, Players: players}); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	return nil
}

// SendEvents forwards events in order.
func (sc *SeatController) SendEvents(events []EventView) error {
	for i := range events {
		if err := sc.Send(ServerMessage{Type: MsgEvent, Event: &events[i]}); err != nil {
			return fmt.Errorf("send event: %w", err)
		}
	}
	return nil
}

// SendState sends the seat's view of the game.
func (sc *SeatController) SendState(h *Host) error {
	return sc.Send(ServerMessage{Type: MsgState, State: h.State(sc.seat)})
}

// Close closes the underlying connection.
func (sc *SeatController) Close() error {
	return sc.conn.Close()
}
