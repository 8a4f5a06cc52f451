package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"boardsync-cli/internal/gateway"
	"boardsync-cli/internal/realtime"
	"boardsync-cli/internal/store"
)

// Options tune a Session. The zero value is usable.
type Options struct {
	UndoWindow time.Duration
	Notifier   Notifier
	Logger     *log.Logger
}

// Session ties a store, a gateway and an optional realtime channel into
// one unit of client state. All reads go through Store; all writes go
// through Coordinator or Undo so the store stays consistent with the
// server's eventual answers.
type Session struct {
	Store       *store.Store
	Coordinator *Coordinator
	Undo        *UndoManager

	gw      gateway.Gateway
	channel realtime.Channel
	merge   *MergeHandler
	logger  *log.Logger
}

// New builds a session. channel may be nil for offline or one-shot use;
// the session then works purely request/response.
func New(gw gateway.Gateway, channel realtime.Channel, opts Options) *Session {
	st := store.New()
	return &Session{
		Store:       st,
		Coordinator: NewCoordinator(st, gw, opts.Notifier, opts.Logger),
		Undo:        NewUndoManager(st, gw, opts.UndoWindow, opts.Notifier, opts.Logger),
		gw:          gw,
		channel:     channel,
		merge:       NewMergeHandler(st, opts.Logger),
		logger:      opts.Logger,
	}
}

// Open loads the reference entities and starts pumping realtime events
// into the store. Projects, users and departments load in parallel;
// labels follow once those land.
func (s *Session) Open(ctx context.Context) error {
	if err := s.loadReference(ctx); err != nil {
		return err
	}
	if s.channel != nil {
		go s.pump()
	}
	return nil
}

func (s *Session) loadReference(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		projects, err := s.gw.ListProjects(gctx)
		if err != nil {
			return fmt.Errorf("load projects: %w", err)
		}
		s.Store.Projects.UpsertMany(projects)
		return nil
	})
	g.Go(func() error {
		users, err := s.gw.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		s.Store.Users.UpsertMany(users)
		return nil
	})
	g.Go(func() error {
		departments, err := s.gw.ListDepartments(gctx)
		if err != nil {
			return fmt.Errorf("load departments: %w", err)
		}
		s.Store.Departments.UpsertMany(departments)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	labels, err := s.gw.ListLabels(ctx, gateway.LabelFilter{})
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	s.Store.Labels.UpsertMany(labels)
	return nil
}

// LoadTasks fetches a project's tasks into the store and, when a channel
// is up, joins that project's event group.
func (s *Session) LoadTasks(ctx context.Context, projectID int64) error {
	tasks, err := s.gw.ListTasks(ctx, gateway.TaskFilter{ProjectID: projectID})
	if err != nil {
		return fmt.Errorf("load tasks for project %d: %w", projectID, err)
	}
	s.Store.Tasks.UpsertMany(tasks)

	if s.channel != nil {
		if err := s.channel.JoinProject(ctx, projectID); err != nil {
			s.logf("join project %d group: %v", projectID, err)
		}
	}
	return nil
}

// Refresh refetches the reference entities. There is no event replay on
// reconnect, so this is the recovery path after a dropped channel.
func (s *Session) Refresh(ctx context.Context) error {
	return s.loadReference(ctx)
}

func (s *Session) pump() {
	for ev := range s.channel.Events() {
		s.merge.Apply(ev)
	}
}

// Close tears down the realtime channel. The store stays readable.
func (s *Session) Close() error {
	if s.channel == nil {
		return nil
	}
	return s.channel.Close()
}

func (s *Session) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
