package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"github.com/wfunc/drawguess/canvas"
	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/game"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/monitor"
	"github.com/wfunc/drawguess/network"
	drawguess_rpc "github.com/wfunc/drawguess/rpc"
	"github.com/wfunc/drawguess/session"
	"github.com/wfunc/drawguess/timer"
)

var ErrUnknownMessage = errors.New("unknown message type")

// Options carries the collaborators a GameServer does not build itself.
type Options struct {
	Scheduler timer.Scheduler
	Clock     clockwork.Clock
	Monitor   *monitor.Monitor
}

type GameServer struct {
	cfg            config.Config
	words          []string
	standalone     timer.Duration
	scheduler      timer.Scheduler
	clock          clockwork.Clock
	monitor        *monitor.Monitor
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	rpcServer      *drawguess_rpc.Server
	httpServer     *http.Server

	mutex        sync.Mutex
	rasters      map[string]*canvas.Raster
	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

func NewGameServer(cfg config.Config, opts Options) (*GameServer, error) {
	if opts.Scheduler == nil {
		return nil, errors.New("server needs a timer scheduler")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	words, err := cfg.WordList()
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}

	s := &GameServer{
		cfg:            cfg,
		words:          words,
		standalone:     cfg.StandaloneDuration(),
		scheduler:      opts.Scheduler,
		clock:          opts.Clock,
		monitor:        opts.Monitor,
		sessionManager: session.NewManager(),
		rasters:        make(map[string]*canvas.Raster),
		shutdownChan:   make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	// RPC is optional; an empty address leaves it off.
	if cfg.Server.RPCAddress != "" {
		rpcServer, err := drawguess_rpc.NewServer(cfg.Server.RPCAddress, drawguess_rpc.NewSessionService(s.sessionManager))
		if err != nil {
			return nil, fmt.Errorf("create rpc server: %w", err)
		}
		s.rpcServer = rpcServer
	}
	return s, nil
}

// Sessions exposes the live sessions for inspection.
func (s *GameServer) Sessions() *session.Manager {
	return s.sessionManager
}

// Handler is the HTTP surface wrapped in the configured CORS policy.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /sessions/{id}/canvas.png", s.handleCanvas)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.monitor != nil {
		mux.Handle("GET /metrics", s.monitor.Handler())
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(mux)
}

func (s *GameServer) Start() error {
	if s.rpcServer != nil {
		go s.rpcServer.Start()
	}

	s.mutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.HTTPAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mutex.Unlock()

	logger.Log.Infof("Draw-and-guess server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes every live session.
func (s *GameServer) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}

	var err error
	s.mutex.Lock()
	srv := s.httpServer
	s.mutex.Unlock()
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	for _, id := range s.sessionManager.IDs() {
		if sess, ok := s.sessionManager.Get(id); ok {
			sess.Close()
		}
	}
	return err
}

func (s *GameServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *GameServer) handleCanvas(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mutex.Lock()
	raster, ok := s.rasters[id]
	s.mutex.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := raster.EncodePNG(w); err != nil {
		logger.Log.Errorf("Failed to encode canvas for session %s: %v", id, err)
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

// newSession builds the per-connection game, its raster and both timer
// listeners, and registers the session.
func (s *GameServer) newSession(conn network.Connection) (*session.Session, error) {
	raster := canvas.NewRaster()
	g, err := game.New(game.Options{
		Words:         s.words,
		Mask:          s.cfg.Game.Mask,
		DefaultPlayer: s.cfg.Game.DefaultPlayer,
		RoundSeconds:  s.cfg.Game.RoundSeconds,
		Canvas: canvas.Options{
			Palette:     s.cfg.Game.Palette,
			Background:  s.cfg.Game.Background,
			StrokeWidth: s.cfg.Game.StrokeWidth,
		},
		CanvasWidth:  s.cfg.Game.CanvasWidth,
		CanvasHeight: s.cfg.Game.CanvasHeight,
		Renderer:     raster,
		Rand:         rand.New(rand.NewSource(s.clock.Now().UnixNano())),
		Clock:        s.clock,
		Scheduler:    s.scheduler,
	})
	if err != nil {
		return nil, err
	}

	sess := session.NewSession(uuid.New().String(), conn, g, s.scheduler, s.standalone)
	g.OnRoundTick(func(update models.TimerUpdate) {
		s.pushTimer(sess, update)
	})
	sess.Timer.OnTick(func(v timer.View) {
		s.pushTimer(sess, models.TimerUpdate{
			Kind:  models.TimerKindStandalone,
			Timer: models.NewTimerView(v),
		})
	})

	s.mutex.Lock()
	s.rasters[sess.ID] = raster
	s.mutex.Unlock()
	s.sessionManager.Add(sess)
	s.monitor.IncOnlineSessions()
	return sess, nil
}

func (s *GameServer) removeSession(sess *session.Session) {
	s.sessionManager.Remove(sess.ID)
	s.mutex.Lock()
	delete(s.rasters, sess.ID)
	s.mutex.Unlock()
	s.monitor.DecOnlineSessions()
	sess.Close()
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess, err := s.newSession(conn)
	if err != nil {
		logger.Log.Errorf("Failed to create session for %s: %v", conn.RemoteAddr(), err)
		conn.Close()
		return
	}

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.removeSession(sess)
	}()

	if err := s.sendSnapshot(sess); err != nil {
		return
	}

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := conn.ReadPacket()
			if err != nil {
				if errors.Is(err, network.ErrShortPacket) || errors.Is(err, network.ErrPacketTooLarge) {
					logger.Log.Warnf("Session %s sent a bad frame: %v", sess.GetID(), err)
					continue
				}
				return
			}
			if err := s.handlePacket(sess, packet); err != nil {
				logger.Log.Warnf("Session %s: message %d: %v", sess.GetID(), packet.MsgID, err)
			}
		}
	}
}

// handlePacket applies one client message. Errors are per-message; the
// session stays open.
func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) error {
	start := time.Now()
	s.monitor.IncPacketsReceived()
	defer func() { s.monitor.ObservePacketLatency(time.Since(start)) }()

	sess.Touch()
	g := sess.Game

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		return nil

	case network.MsgTypeNewWord:
		g.DrawNewWord()
		s.monitor.IncRoundsStarted()
	case network.MsgTypeToggleWord:
		g.ToggleWord()
	case network.MsgTypeRevealWord:
		g.RevealWord()

	case network.MsgTypePointerDown, network.MsgTypePointerMove:
		var req models.PointerAction
		if err := packet.Decode(&req); err != nil {
			return err
		}
		p := canvas.ToLocal(req.ClientX, req.ClientY, req.OriginX, req.OriginY)
		if packet.MsgID == network.MsgTypePointerDown {
			return s.sendRender(sess, g.PointerDown(p))
		}
		return s.sendRender(sess, g.PointerMove(p))
	case network.MsgTypePointerUp:
		g.PointerUp()
		return nil
	case network.MsgTypePointerLeave:
		g.PointerLeave()
		return nil
	case network.MsgTypeClearCanvas:
		return s.sendRender(sess, g.ClearCanvas())
	case network.MsgTypeResize:
		var req models.ResizeAction
		if err := packet.Decode(&req); err != nil {
			return err
		}
		return s.sendRender(sess, g.Resize(req.Width, req.Height, req.PixelRatio))
	case network.MsgTypeSelectColor:
		var req models.ColorAction
		if err := packet.Decode(&req); err != nil {
			return err
		}
		if _, ok := g.SelectColor(req.Index); !ok {
			return fmt.Errorf("palette index %d out of range", req.Index)
		}
	case network.MsgTypeStrokeWidth:
		var req models.StrokeWidthAction
		if err := packet.Decode(&req); err != nil {
			return err
		}
		g.SetStrokeWidth(req.Width)
	case network.MsgTypeToggleEraser:
		g.ToggleEraser()

	case network.MsgTypeRoundStart:
		g.StartRound()
	case network.MsgTypeRoundPause:
		g.PauseRound()
	case network.MsgTypeRoundToggle:
		g.ToggleRound()
	case network.MsgTypeRoundReset:
		g.ResetRound()

	case network.MsgTypeSubmitGuess:
		var req models.GuessAction
		if err := packet.Decode(&req); err != nil {
			return err
		}
		entry, ok, _ := g.SubmitGuess(req.Guess, req.Player)
		if !ok {
			return nil
		}
		s.monitor.ObserveGuess(entry.Correct)
	case network.MsgTypeClearGuesses:
		g.ClearGuesses()

	case network.MsgTypeTimerDuration:
		var req models.DurationAction
		if err := packet.Decode(&req); err != nil {
			return err
		}
		sess.SetDuration(req.Minutes, req.Seconds)
	case network.MsgTypeTimerStart:
		sess.Timer.Start()
	case network.MsgTypeTimerPause:
		sess.Timer.Pause()
	case network.MsgTypeTimerReset:
		sess.Timer.Reset()

	default:
		return fmt.Errorf("%w: %d", ErrUnknownMessage, packet.MsgID)
	}
	return s.sendSnapshot(sess)
}

func (s *GameServer) sendSnapshot(sess *session.Session) error {
	return sess.SendJSON(network.MsgTypeSnapshot, sess.View())
}

func (s *GameServer) sendRender(sess *session.Session, ops []canvas.Op) error {
	if len(ops) == 0 {
		return nil
	}
	segments := 0
	for _, op := range ops {
		if op.Kind == canvas.OpSegment {
			segments++
		}
	}
	s.monitor.AddSegments(segments)
	return sess.SendJSON(network.MsgTypeRender, models.RenderPayload{Ops: ops})
}

// pushTimer runs on the scheduler goroutine.
func (s *GameServer) pushTimer(sess *session.Session, update models.TimerUpdate) {
	if update.Timer.Phase == timer.PhaseExpired.String() {
		s.monitor.IncTimerExpired(update.Kind)
	}
	if err := sess.SendJSON(network.MsgTypeTimer, update); err != nil {
		logger.Log.Debugf("Failed to push %s timer to session %s: %v", update.Kind, sess.GetID(), err)
	}
}
