package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/peterkuimelis/regicide/internal/log"
)

// Local REPL commands that never reach the server.
const (
	cmdHelp = "help"
	cmdQuit = "quit"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
	name string
	in   io.Reader
	out  io.Writer
	seat int
}

// NewClient creates a REPL client over an established connection.
func NewClient(conn net.Conn, name string, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, name: name, in: in, out: out}
}

// Connect dials a server and runs the REPL on stdin/stdout.
func Connect(ctx context.Context, addr, name string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	fmt.Println("Connected! Waiting for the game to start...")
	return NewClient(conn, name, os.Stdin, os.Stdout).Run(ctx)
}

type serverResult struct {
	msg ServerMessage
	err error
}

// Run sends the handshake, then prints server messages and forwards typed
// commands until the game ends, the input closes or ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	enc := json.NewEncoder(c.conn)
	if err := enc.Encode(ClientMessage{Type: MsgHello, Name: c.name}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	done := make(chan struct{})
	defer close(done)

	msgs := make(chan serverResult)
	go func() {
		dec := json.NewDecoder(c.conn)
		for {
			var msg ServerMessage
			err := dec.Decode(&msg)
			select {
			case msgs <- serverResult{msg, err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case r := <-msgs:
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					return errors.New("server closed the connection")
				}
				return fmt.Errorf("read message: %w", r.err)
			}
			if over := c.handle(r.msg); over {
				return nil
			}

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			msg, err := ParseCommand(line)
			if err != nil {
				fmt.Fprintf(c.out, "%v (type 'help')\n", err)
				continue
			}
			switch msg.Type {
			case cmdHelp:
				c.renderHelp()
				continue
			case cmdQuit:
				return nil
			}
			if err := enc.Encode(msg); err != nil {
				return fmt.Errorf("send %s: %w", msg.Type, err)
			}
		}
	}
}

// handle renders one server message and reports whether the game is over.
func (c *Client) handle(msg ServerMessage) bool {
	switch msg.Type {
	case MsgWelcome:
		c.seat = msg.Seat
		fmt.Fprintf(c.out, "You are P%d of %d. Type 'help' for commands.\n", msg.Seat+1, msg.Players)
	case MsgEvent:
		c.renderEvent(msg.Event)
	case MsgState:
		c.renderState(msg.State)
	case MsgError:
		if msg.Error != nil {
			fmt.Fprintf(c.out, "✗ %s\n", msg.Error.Message)
		}
	case MsgGameOver:
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, "          GAME OVER")
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, msg.Result)
		if msg.Ranking != "" {
			fmt.Fprintf(c.out, "Ranking: %s\n", msg.Ranking)
		}
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		return true
	}
	return false
}

// ParseCommand turns a REPL line into a message. Card and player numbers are
// typed 1-based and sent 0-based.
func ParseCommand(line string) (ClientMessage, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return ClientMessage{}, errors.New("empty command")
	}
	args := fields[1:]

	switch fields[0] {
	case "play", "p":
		idx, err := parseNumbers(args)
		if err != nil {
			return ClientMessage{}, err
		}
		return ClientMessage{Type: MsgPlay, Indices: idx}, nil
	case "discard", "d":
		idx, err := parseNumbers(args)
		if err != nil {
			return ClientMessage{}, err
		}
		return ClientMessage{Type: MsgDiscard, Indices: idx}, nil
	case "jester", "j":
		return ClientMessage{Type: MsgJester}, nil
	case "yield", "y":
		return ClientMessage{Type: MsgYield}, nil
	case "nominate", "n":
		idx, err := parseNumbers(args)
		if err != nil {
			return ClientMessage{}, err
		}
		if len(idx) != 1 {
			return ClientMessage{}, errors.New("nominate takes one player number")
		}
		return ClientMessage{Type: MsgNominate, Player: idx[0]}, nil
	case "state", "s":
		return ClientMessage{Type: MsgState}, nil
	case "help", "h", "?":
		return ClientMessage{Type: cmdHelp}, nil
	case "quit", "q", "exit":
		return ClientMessage{Type: cmdQuit}, nil
	default:
		return ClientMessage{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseNumbers(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, errors.New("give at least one card number")
	}
	var out []int
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%q is not a positive number", a)
		}
		out = append(out, n-1)
	}
	return out, nil
}

// --- Rendering ---

func (c *Client) renderHelp() {
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "  play N [N...]     play cards from your hand (p)")
	fmt.Fprintln(c.out, "  discard N [N...]  discard to survive the enemy attack (d)")
	fmt.Fprintln(c.out, "  jester            solo: discard your hand and draw a new one (j)")
	fmt.Fprintln(c.out, "  yield             skip playing; the enemy still attacks (y)")
	fmt.Fprintln(c.out, "  nominate P        after a Jester, choose who goes next (n)")
	fmt.Fprintln(c.out, "  state             show the table again (s)")
	fmt.Fprintln(c.out, "  quit              leave (q)")
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	fmt.Fprintln(c.out, log.FormatEvent(log.GameEvent{Turn: ev.Turn, Phase: ev.Phase, Details: ev.Details}))
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	w := c.out

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")
	if en := sv.Enemy; en != nil {
		immune := en.Immunity
		if en.ImmunityCancelled {
			immune = "none (Jester)"
		}
		fmt.Fprintf(w, "║  ENEMY %s  HP %d/%d  ATK %d (shield %d)  Immune: %s\n",
			en.Name, en.HP, en.MaxHP, en.Attack, en.Shield, immune)
		if en.PendingSpades > 0 {
			fmt.Fprintf(w, "║  Blocked spades waiting for a Jester: %d\n", en.PendingSpades)
		}
	}
	fmt.Fprintf(w, "║  Castle: %d  Tavern: %d  Discard: %d  Defeated: %d  Captured: %d\n",
		sv.CastleCount, sv.TavernCount, sv.TavernDiscardCount, sv.CastleDiscardCount, sv.Captured)
	if len(sv.Played) > 0 {
		fmt.Fprintf(w, "║  In play: %s\n", strings.Join(sv.Played, " "))
	}
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	for _, p := range sv.Players {
		marker := " "
		if p.Active {
			marker = "▶"
		}
		fmt.Fprintf(w, "║ %s P%d  Hand: %d/%d", marker, p.Seat+1, p.HandCount, p.MaxHand)
		if p.JesterCharges > 0 || p.JestersUsed > 0 {
			fmt.Fprintf(w, "  Jesters: %d left, %d used", p.JesterCharges, p.JestersUsed)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")

	fmt.Fprintf(w, "Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		fmt.Fprint(w, " | Your turn")
	} else if sv.Result == "" {
		fmt.Fprintf(w, " | P%d's turn", sv.Active+1)
	}
	fmt.Fprintln(w)

	if len(sv.Hand) > 0 {
		fmt.Fprint(w, "\nHand: ")
		for _, cv := range sv.Hand {
			fmt.Fprintf(w, "[%d] %s  ", cv.Index+1, cv.Card)
		}
		fmt.Fprintln(w)
	}

	if !sv.IsYourTurn {
		return
	}
	switch {
	case sv.PendingAttack > 0:
		fmt.Fprintf(w, "Discard cards worth at least %d.\n", sv.PendingAttack)
	case sv.AwaitingNomination:
		fmt.Fprintln(w, "Play, or nominate who goes next.")
	default:
		fmt.Fprint(w, "Play a card or combo")
		if sv.CanYield {
			fmt.Fprint(w, ", or yield")
		}
		fmt.Fprintln(w, ".")
	}
}
