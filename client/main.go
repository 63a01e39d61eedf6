package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
)

const usage = `commands:
  new | show | reveal                 word controls
  guess <text> [player] | forget      guesses (forget clears the list)
  start | pause | toggle | reset      round timer
  timer <min> <sec> | tstart | tpause | treset
                                      standalone timer
  dot <x> <y> | line <x0> <y0> <x1> <y1>
  clear | color <i> | width <px> | eraser | resize <w> <h> [ratio]
  quit`

// writeMu serialises writes from the prompt and the heartbeat goroutine.
var writeMu sync.Mutex

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, v interface{}) error {
	var data []byte
	if v != nil {
		var err error
		if data, err = json.Marshal(v); err != nil {
			return err
		}
	}
	packet, err := network.Encode(msgID, data)
	if err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func printPacket(p *network.Packet) {
	switch p.MsgID {
	case network.MsgTypeSnapshot:
		var v models.SessionView
		if err := p.Decode(&v); err != nil {
			log.Printf("bad snapshot: %v", err)
			return
		}
		round := "-"
		if v.Game.Round != nil {
			round = v.Game.Round.Display
		}
		log.Printf("<- word %s | round %s | timer %s %s | %s",
			v.Game.Word.Display, round, v.Timer.Display, v.Timer.Notice, v.Game.Status)
		for _, g := range v.Game.Guesses {
			log.Printf("   [%s] %s: %s (%s)", g.Time, g.Player, g.Guess, g.Tag)
		}
	case network.MsgTypeRender:
		var r models.RenderPayload
		if err := p.Decode(&r); err != nil {
			log.Printf("bad render: %v", err)
			return
		}
		log.Printf("<- render %d ops", len(r.Ops))
	case network.MsgTypeTimer:
		var u models.TimerUpdate
		if err := p.Decode(&u); err != nil {
			log.Printf("bad timer update: %v", err)
			return
		}
		log.Printf("<- %s timer %s %s %s", u.Kind, u.Timer.Display, u.Timer.Notice, u.Status)
	default:
		log.Printf("<- RECV (ID: %d): %s", p.MsgID, string(p.Data))
	}
}

func floats(args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("need %d numbers", n)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func pointer(x, y float64) models.PointerAction {
	return models.PointerAction{ClientX: x, ClientY: y}
}

func runCommand(c *websocket.Conn, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	simple := map[string]uint16{
		"new":    network.MsgTypeNewWord,
		"show":   network.MsgTypeToggleWord,
		"reveal": network.MsgTypeRevealWord,
		"forget": network.MsgTypeClearGuesses,
		"start":  network.MsgTypeRoundStart,
		"pause":  network.MsgTypeRoundPause,
		"toggle": network.MsgTypeRoundToggle,
		"reset":  network.MsgTypeRoundReset,
		"tstart": network.MsgTypeTimerStart,
		"tpause": network.MsgTypeTimerPause,
		"treset": network.MsgTypeTimerReset,
		"clear":  network.MsgTypeClearCanvas,
		"eraser": network.MsgTypeToggleEraser,
	}
	if id, ok := simple[cmd]; ok {
		return send(c, id, nil)
	}

	switch cmd {
	case "guess":
		if len(args) == 0 {
			return fmt.Errorf("guess needs a word")
		}
		action := models.GuessAction{Guess: args[0]}
		if len(args) > 1 {
			action.Player = strings.Join(args[1:], " ")
		}
		return send(c, network.MsgTypeSubmitGuess, action)
	case "timer":
		action := models.DurationAction{}
		if len(args) > 0 {
			action.Minutes = args[0]
		}
		if len(args) > 1 {
			action.Seconds = args[1]
		}
		return send(c, network.MsgTypeTimerDuration, action)
	case "dot":
		xy, err := floats(args, 2)
		if err != nil {
			return err
		}
		if err := send(c, network.MsgTypePointerDown, pointer(xy[0], xy[1])); err != nil {
			return err
		}
		return send(c, network.MsgTypePointerUp, nil)
	case "line":
		pts, err := floats(args, 4)
		if err != nil {
			return err
		}
		if err := send(c, network.MsgTypePointerDown, pointer(pts[0], pts[1])); err != nil {
			return err
		}
		if err := send(c, network.MsgTypePointerMove, pointer(pts[2], pts[3])); err != nil {
			return err
		}
		return send(c, network.MsgTypePointerUp, nil)
	case "color":
		i, err := floats(args, 1)
		if err != nil {
			return err
		}
		return send(c, network.MsgTypeSelectColor, models.ColorAction{Index: int(i[0])})
	case "width":
		w, err := floats(args, 1)
		if err != nil {
			return err
		}
		return send(c, network.MsgTypeStrokeWidth, models.StrokeWidthAction{Width: w[0]})
	case "resize":
		wh, err := floats(args, 2)
		if err != nil {
			return err
		}
		ratio := 1.0
		if len(args) > 2 {
			if r, err := strconv.ParseFloat(args[2], 64); err == nil {
				ratio = r
			}
		}
		return send(c, network.MsgTypeResize, models.ResizeAction{Width: wh[0], Height: wh[1], PixelRatio: ratio})
	case "help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
}

func main() {
	addr := pflag.StringP("addr", "a", "localhost:8080", "server address")
	heartbeat := pflag.Duration("heartbeat", 15*time.Second, "heartbeat interval, 0 disables")
	pflag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			p, err := network.Parse(message)
			if err != nil {
				log.Printf("Received invalid packet: %v", err)
				continue
			}
			printPacket(p)
		}
	}()

	if *heartbeat > 0 {
		go func() {
			ticker := time.NewTicker(*heartbeat)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := send(c, network.MsgTypeHeartbeat, nil); err != nil {
						return
					}
				}
			}
		}()
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println(usage)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			writeMu.Lock()
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			writeMu.Unlock()
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "quit" {
				return
			}
			if err := runCommand(c, line); err != nil {
				log.Println("Error:", err)
			}
		}
	}
}
