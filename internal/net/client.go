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
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn       net.Conn
	playerName string // "P1" or "P2"
	in         *bufio.Reader
	out        io.Writer
}

// NewClient wraps conn with a REPL reading from in and writing to out.
func NewClient(conn net.Conn, playerName string, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, playerName: playerName, in: bufio.NewReader(in), out: out}
}

// Connect connects to a server, sends the deck choice, and runs the REPL.
func Connect(ctx context.Context, addr string, deckNumber int) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Send join message with deck choice
	enc := json.NewEncoder(conn)
	if err := enc.Encode(ClientMessage{Type: "join", DeckNumber: deckNumber}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Println("Connected! Waiting for game to start...")

	client := NewClient(conn, "P2", os.Stdin, os.Stdout)
	return client.RunREPL(ctx)
}

// RunREPL reads server messages and handles them interactively.
func (c *Client) RunREPL(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "notify":
			c.renderEvent(msg.Event)

		case "choose_action":
			c.renderState(msg.State)
			c.renderActions(msg.Actions)
			idx := c.readChoice(len(msg.Actions))
			if err := enc.Encode(ClientMessage{Type: "action", Index: idx}); err != nil {
				return fmt.Errorf("send action: %w", err)
			}

		case "choose_options":
			if msg.Kind == "confirm" {
				fmt.Fprintf(c.out, "\n%s: %s (y/n): ", msg.Prompt, msg.Message)
				answer := c.readYesNo()
				if err := enc.Encode(ClientMessage{Type: "yes_no", Answer: answer}); err != nil {
					return fmt.Errorf("send yes_no: %w", err)
				}
				continue
			}
			c.renderState(msg.State)
			c.renderOptions(msg)
			indices, cancel := c.readOptionIndices(len(msg.Options), msg.Min, msg.Max)
			reply := ClientMessage{Type: "options", Indices: indices}
			if cancel {
				reply = ClientMessage{Type: "cancel"}
			}
			if err := enc.Encode(reply); err != nil {
				return fmt.Errorf("send options: %w", err)
			}

		case "error":
			return errors.New(msg.Error)

		case "game_over":
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, msg.Result)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			return nil
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	// Format like the TextLogger
	phase := ev.Phase
	for len(phase) < 8 {
		phase += " "
	}
	fmt.Fprintf(c.out, "T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "╔══════════════════════════════════════════════════════╗")

	opp := sv.Opponent
	fmt.Fprintf(c.out, "║  OPPONENT  Prizes: %d  Hand: %d  Deck: %d  Discard: %d\n",
		opp.Prizes, opp.HandCount, opp.DeckCount, opp.DiscardCount)
	fmt.Fprintf(c.out, "║  Bench:   %s\n", formatBench(opp.Bench))
	fmt.Fprintf(c.out, "║  Active:  %s\n", formatCreature(opp.Active))

	fmt.Fprintln(c.out, "║──────────────────────────────────────────────────────")
	if sv.Stadium != "" {
		fmt.Fprintf(c.out, "║  Stadium: %s\n", sv.Stadium)
		fmt.Fprintln(c.out, "║──────────────────────────────────────────────────────")
	}

	you := sv.You
	fmt.Fprintf(c.out, "║  Active:  %s\n", formatCreature(you.Active))
	fmt.Fprintf(c.out, "║  Bench:   %s\n", formatBench(you.Bench))
	fmt.Fprintf(c.out, "║  YOU  Prizes: %d  Hand: %d  Deck: %d  Discard: %d\n",
		you.Prizes, you.HandCount, you.DeckCount, you.DiscardCount)
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	fmt.Fprintln(c.out, turnInfo)

	if len(you.Hand) > 0 {
		fmt.Fprintf(c.out, "\nHand: ")
		for i, name := range you.Hand {
			fmt.Fprintf(c.out, "[%d] %s  ", i+1, name)
		}
		fmt.Fprintln(c.out)
	}
}

func formatCreature(cv *CreatureView) string {
	if cv == nil {
		return "[ ]"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s %d/%d", cv.Name, cv.HP, cv.MaxHP)
	if len(cv.Energies) > 0 {
		fmt.Fprintf(&b, " E:%s", strings.Join(cv.Energies, ","))
	}
	if cv.Tool != "" {
		fmt.Fprintf(&b, " +%s", cv.Tool)
	}
	if cv.Status != "" {
		fmt.Fprintf(&b, " %s", cv.Status)
	}
	b.WriteString("]")
	return b.String()
}

func formatBench(bench []CreatureView) string {
	if len(bench) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(bench))
	for i := range bench {
		parts[i] = formatCreature(&bench[i])
	}
	return strings.Join(parts, " ")
}

func (c *Client) renderActions(actions []ActionView) {
	fmt.Fprintln(c.out, "\nActions:")
	for _, a := range actions {
		fmt.Fprintf(c.out, "  %d) %s\n", a.Index+1, a.Desc)
	}
}

func (c *Client) readLine() string {
	line, _ := c.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (c *Client) readChoice(count int) int {
	for {
		fmt.Fprint(c.out, "> ")
		n, err := strconv.Atoi(c.readLine())
		if err != nil || n < 1 || n > count {
			fmt.Fprintf(c.out, "Enter a number between 1 and %d\n", count)
			continue
		}
		return n - 1 // convert to 0-indexed
	}
}

func (c *Client) renderOptions(msg ServerMessage) {
	fmt.Fprintf(c.out, "\n%s (select %d", msg.Prompt, msg.Min)
	if msg.Max != msg.Min {
		fmt.Fprintf(c.out, "-%d", msg.Max)
	}
	fmt.Fprintln(c.out, ", or \"c\" to cancel)")
	for _, o := range msg.Options {
		if o.Creature != nil {
			fmt.Fprintf(c.out, "  %d) %s\n", o.Index+1, formatCreature(o.Creature))
		} else {
			fmt.Fprintf(c.out, "  %d) %s\n", o.Index+1, o.Label)
		}
	}
}

// readOptionIndices reads space-separated 1-based picks. "c" cancels.
func (c *Client) readOptionIndices(count, min, max int) ([]int, bool) {
	for {
		fmt.Fprint(c.out, "> ")
		line := c.readLine()
		if strings.EqualFold(line, "c") || strings.EqualFold(line, "cancel") {
			return nil, true
		}
		parts := strings.Fields(line)

		if len(parts) < min || len(parts) > max {
			fmt.Fprintf(c.out, "Enter %d-%d numbers separated by spaces\n", min, max)
			continue
		}

		var indices []int
		valid := true
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 || n > count {
				fmt.Fprintf(c.out, "Each number must be between 1 and %d\n", count)
				valid = false
				break
			}
			indices = append(indices, n-1) // convert to 0-indexed
		}
		if valid {
			return indices, false
		}
	}
}

func (c *Client) readYesNo() bool {
	for {
		switch strings.ToLower(c.readLine()) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			fmt.Fprint(c.out, "Enter y or n: ")
		}
	}
}
