package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"rejourney/internal/daemon"
	"rejourney/internal/logging"
	"rejourney/internal/logs"
	"rejourney/internal/playback"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Rejourney", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.StorePath = status.StorePath
	resp.LockPath = status.LockFilePath
	resp.SessionCount = status.SessionCount
	resp.ActiveSession = status.ActiveSession
	resp.Playback = status.Playback
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) SessionList(_ SessionListRequest, resp *SessionListResponse) error {
	summaries, err := s.daemon.ListSessions(s.ctx)
	if err != nil {
		return err
	}
	resp.Sessions = summaries
	return nil
}

func (s *service) SessionDescribe(req SessionDescribeRequest, resp *SessionDescribeResponse) error {
	if req.ID == "" {
		return errors.New("session id is required")
	}
	summary, err := s.daemon.DescribeSession(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Summary = summary
	return nil
}

func (s *service) SessionIngest(req SessionIngestRequest, resp *SessionIngestResponse) error {
	if len(req.Payload) == 0 {
		return errors.New("session payload is required")
	}
	stored, err := s.daemon.IngestPayload(s.ctx, req.Payload)
	if err != nil {
		return err
	}
	summary, err := s.daemon.DescribeSession(s.ctx, stored.ID)
	if err != nil {
		return err
	}
	resp.Summary = summary
	return nil
}

func (s *service) SessionDelete(req SessionDeleteRequest, resp *SessionDeleteResponse) error {
	if req.ID == "" {
		return errors.New("session id is required")
	}
	if err := s.daemon.DeleteSession(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Deleted = true
	s.log().Info("session deleted via IPC", logging.String(logging.FieldSessionID, req.ID))
	return nil
}

func (s *service) fillPlayback(resp *PlaybackResponse, state playback.State, err error) error {
	if err != nil {
		return err
	}
	resp.SessionID = s.daemon.ActiveSession()
	resp.State = state
	return nil
}

func (s *service) Load(req LoadRequest, resp *PlaybackResponse) error {
	if req.ID == "" {
		return errors.New("session id is required")
	}
	state, err := s.daemon.Load(s.ctx, req.ID)
	return s.fillPlayback(resp, state, err)
}

func (s *service) Unload(_ UnloadRequest, resp *UnloadResponse) error {
	s.daemon.Unload()
	resp.Unloaded = true
	return nil
}

func (s *service) Play(_ PlayRequest, resp *PlaybackResponse) error {
	state, err := s.daemon.Play()
	return s.fillPlayback(resp, state, err)
}

func (s *service) Pause(_ PauseRequest, resp *PlaybackResponse) error {
	state, err := s.daemon.Pause()
	return s.fillPlayback(resp, state, err)
}

func (s *service) Seek(req SeekRequest, resp *PlaybackResponse) error {
	state, err := s.daemon.Seek(req.Seconds)
	return s.fillPlayback(resp, state, err)
}

func (s *service) Skip(req SkipRequest, resp *PlaybackResponse) error {
	state, err := s.daemon.Skip(req.Seconds)
	return s.fillPlayback(resp, state, err)
}

func (s *service) SetRate(req RateRequest, resp *PlaybackResponse) error {
	if req.Rate <= 0 {
		return fmt.Errorf("invalid playback rate %v", req.Rate)
	}
	state, err := s.daemon.SetRate(req.Rate)
	return s.fillPlayback(resp, state, err)
}

func (s *service) Restart(_ RestartRequest, resp *PlaybackResponse) error {
	state, err := s.daemon.Restart()
	return s.fillPlayback(resp, state, err)
}

func (s *service) Scrub(req ScrubRequest, resp *PlaybackResponse) error {
	var (
		state playback.State
		err   error
	)
	if req.Active {
		state, err = s.daemon.BeginScrub()
	} else {
		state, err = s.daemon.EndScrub()
	}
	return s.fillPlayback(resp, state, err)
}

func (s *service) State(_ StateRequest, resp *PlaybackResponse) error {
	state, err := s.daemon.PlaybackState()
	return s.fillPlayback(resp, state, err)
}

func (s *service) Overlay(_ OverlayRequest, resp *OverlayResponse) error {
	touches, state, err := s.daemon.Overlay()
	if err != nil {
		return err
	}
	resp.SessionID = s.daemon.ActiveSession()
	resp.State = state
	resp.Touches = touches
	return nil
}

func (s *service) Timeline(req TimelineRequest, resp *TimelineResponse) error {
	if req.ID == "" {
		events, err := s.daemon.Timeline()
		if err != nil {
			return err
		}
		resp.SessionID = s.daemon.ActiveSession()
		resp.Events = events
		return nil
	}
	events, err := s.daemon.SessionTimeline(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.SessionID = req.ID
	resp.Events = events
	return nil
}

func (s *service) Density(req DensityRequest, resp *DensityResponse) error {
	if req.ID == "" {
		strip, err := s.daemon.DensityStrip()
		if err != nil {
			return err
		}
		resp.SessionID = s.daemon.ActiveSession()
		resp.Strip = strip
		return nil
	}
	strip, err := s.daemon.SessionDensity(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.SessionID = req.ID
	resp.Strip = strip
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}
