package rpc

import (
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/session"
)

// ServiceName is the name clients use in calls, e.g. "SessionService.Count".
const ServiceName = "SessionService"

var ErrSessionNotFound = errors.New("session not found")

// Server manages the RPC listener.
type Server struct {
	listener  net.Listener
	address   string
	rpcServer *rpc.Server
}

// NewServer listens on addr and registers service on a private rpc.Server.
func NewServer(addr string, service *SessionService) (*Server, error) {
	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName(ServiceName, service); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener:  listener,
		address:   addr,
		rpcServer: rpcServer,
	}, nil
}

// Addr is the bound listener address, useful when addr used port 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.listener.Addr())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpcServer.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// SessionSource is the read side of session.Manager.
type SessionSource interface {
	Get(sessionID string) (*session.Session, bool)
	Count() int
	IDs() []string
}

// SessionService exposes read-only session inspection over net/rpc.
type SessionService struct {
	sessions SessionSource
}

func NewSessionService(sessions SessionSource) *SessionService {
	return &SessionService{sessions: sessions}
}

type SnapshotArgs struct {
	SessionID string
}

type SnapshotReply struct {
	View models.SessionView
}

// Snapshot returns the same view the browser receives.
func (ss *SessionService) Snapshot(args *SnapshotArgs, reply *SnapshotReply) error {
	sess, ok := ss.sessions.Get(args.SessionID)
	if !ok {
		return ErrSessionNotFound
	}
	reply.View = sess.View()
	return nil
}

type CountArgs struct {
	IncludeIDs bool
}

type CountReply struct {
	Count int
	IDs   []string
}

func (ss *SessionService) Count(args *CountArgs, reply *CountReply) error {
	if args.IncludeIDs {
		reply.IDs = ss.sessions.IDs()
		reply.Count = len(reply.IDs)
		return nil
	}
	reply.Count = ss.sessions.Count()
	return nil
}
