package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"boardsync-cli/internal/gateway"
	"boardsync-cli/internal/sync"
)

// session bundles the sync engine with the raw client. One-shot commands
// fetch just the entities they mutate instead of bootstrapping the whole
// board.
type session struct {
	*sync.Session
	gw *gateway.Client
}

func newSession(cmd *cobra.Command, app *App) (*session, error) {
	if app.ServerURL == "" {
		return nil, errNoServer
	}
	gw, err := gateway.NewClient(app.ServerURL, app.Token)
	if err != nil {
		return nil, err
	}
	s := sync.New(gw, nil, sync.Options{
		UndoWindow: app.UndoWindow,
		Notifier:   stderrNotifier{w: cmd.ErrOrStderr()},
	})
	return &session{Session: s, gw: gw}, nil
}

// loadTask fetches one task into the store so an optimistic mutation has a
// snapshot to roll back to.
func (s *session) loadTask(ctx context.Context, id int64) error {
	task, err := s.gw.GetTask(ctx, id)
	if err != nil {
		return err
	}
	s.Store.Tasks.UpsertOne(task)
	return nil
}

func (s *session) loadProject(ctx context.Context, id int64) error {
	project, err := s.gw.GetProject(ctx, id)
	if err != nil {
		return err
	}
	s.Store.Projects.UpsertOne(project)
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadArg(arg, "a positive numeric id")
	}
	return id, nil
}

type stderrNotifier struct {
	w io.Writer
}

func (n stderrNotifier) Info(msg string)  { fmt.Fprintln(n.w, msg) }
func (n stderrNotifier) Error(msg string) { fmt.Fprintln(n.w, "error: "+msg) }
