package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"minutes/internal/api"
	"minutes/internal/daemon"
	"minutes/internal/logging"
	"minutes/internal/meetings"
	"minutes/internal/queue"
	"minutes/internal/services"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
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
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName(serviceName, srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Path returns the socket location.
func (s *Server) Path() string {
	return s.path
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
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"),
				)
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
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun minutes daemon stop"),
		)
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Info("daemon stop requested via IPC", logging.String(logging.FieldEventType, "daemon_stop_requested"))
	// Reply before the process starts tearing down the listener.
	go s.daemon.RequestShutdown()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.QueueDBPath = status.QueueDBPath
	resp.RecordsDBPath = status.RecordsDBPath
	resp.LockPath = status.LockFilePath
	resp.Workflow = api.FromStatusSummary(status.Workflow)
	return nil
}

func (s *service) Enqueue(req EnqueueRequest, resp *EnqueueResponse) error {
	kind, err := queue.ParseKind(req.Kind)
	if err != nil {
		return err
	}
	id, err := s.daemon.Enqueue(s.ctx, strings.TrimSpace(req.MeetingID), kind)
	if err != nil {
		return err
	}
	resp.JobID = id
	return nil
}

func (s *service) Cancel(req JobRequest, resp *CancelResponse) error {
	if err := s.daemon.Cancel(s.ctx, strings.TrimSpace(req.ID)); err != nil {
		return err
	}
	resp.Cancelled = true
	return nil
}

func (s *service) Retry(req JobRequest, resp *RetryResponse) error {
	id, err := s.daemon.Retry(s.ctx, strings.TrimSpace(req.ID))
	if err != nil {
		return err
	}
	resp.JobID = id
	return nil
}

func (s *service) ListJobs(req ListJobsRequest, resp *ListJobsResponse) error {
	statuses := make([]queue.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		status, ok := queue.ParseStatus(raw)
		if !ok {
			return services.Wrap(services.ErrValidation, "ipc", "list jobs", fmt.Sprintf("unknown status %q", raw), nil)
		}
		statuses = append(statuses, status)
	}
	jobs, err := s.daemon.ListJobs(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Jobs = api.FromJobs(jobs)
	return nil
}

func (s *service) ShowJob(req JobRequest, resp *ShowJobResponse) error {
	job, err := s.daemon.ShowJob(s.ctx, strings.TrimSpace(req.ID))
	if err != nil {
		return err
	}
	resp.Job = api.FromJob(job)
	return nil
}

func (s *service) ClearFinished(_ ClearFinishedRequest, resp *ClearFinishedResponse) error {
	removed, err := s.daemon.ClearFinished(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) AddMeeting(req AddMeetingRequest, resp *AddMeetingResponse) error {
	heldAt, err := parseHeldAt(req.HeldAt)
	if err != nil {
		return err
	}
	input := daemon.MeetingInput{
		Title:      req.Title,
		HeldAt:     heldAt,
		AudioPath:  req.AudioPath,
		Transcript: req.Transcript,
		Analyze:    req.Analyze,
	}
	for _, p := range req.Participants {
		input.Participants = append(input.Participants, meetings.Participant{Name: p.Name, Role: p.Role})
	}
	meeting, jobID, err := s.daemon.AddMeeting(s.ctx, input)
	if meeting != nil {
		resp.Meeting = api.FromMeeting(meeting, nil, nil)
	}
	if err != nil {
		return err
	}
	resp.JobID = jobID
	return nil
}

// parseHeldAt accepts RFC3339 timestamps or a bare date. Empty means now.
func parseHeldAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, services.Wrap(services.ErrValidation, "ipc", "add meeting",
		fmt.Sprintf("held_at %q is not RFC3339 or YYYY-MM-DD", raw), nil)
}

func (s *service) ListMeetings(_ ListMeetingsRequest, resp *ListMeetingsResponse) error {
	list, err := s.daemon.ListMeetings(s.ctx)
	if err != nil {
		return err
	}
	resp.Meetings = api.FromMeetings(list)
	return nil
}

func (s *service) ShowMeeting(req ShowMeetingRequest, resp *ShowMeetingResponse) error {
	detail, err := s.daemon.ShowMeeting(s.ctx, strings.TrimSpace(req.ID))
	if err != nil {
		return err
	}
	resp.Meeting = api.FromMeeting(detail.Meeting, detail.Tasks, detail.Jobs)
	return nil
}

func (s *service) AddPerson(req AddPersonRequest, resp *AddPersonResponse) error {
	person, err := s.daemon.AddPerson(s.ctx, req.Name, req.Role)
	if err != nil {
		return err
	}
	resp.Person = api.FromPerson(person)
	return nil
}

func (s *service) ListPeople(_ ListPeopleRequest, resp *ListPeopleResponse) error {
	people, err := s.daemon.ListPeople(s.ctx)
	if err != nil {
		return err
	}
	resp.People = api.FromPeople(people)
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil {
		return err
	}
	*resp = DatabaseHealthResponse{
		DBPath:           health.DBPath,
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		SchemaVersion:    health.SchemaVersion,
		TableExists:      health.TableExists,
		MissingColumns:   health.MissingColumns,
		IntegrityCheck:   health.IntegrityCheck,
		TotalJobs:        health.TotalJobs,
		Error:            health.Error,
	}
	return nil
}

func (s *service) TestNotify(_ TestNotifyRequest, resp *TestNotifyResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	if err != nil {
		return err
	}
	resp.Sent = sent
	resp.Message = message
	return nil
}
