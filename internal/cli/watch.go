package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"boardsync-cli/internal/realtime"
	"boardsync-cli/internal/sync"
)

var (
	watchKindStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	watchCreated   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	watchUpdated   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	watchDeleted   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	watchTimeStyle = lipgloss.NewStyle().Faint(true)
)

func newWatchCmd(app *App) *cobra.Command {
	var (
		projectIDs []int64
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow live board events",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.ServerURL == "" {
				return writeErr(cmd, errNoServer)
			}
			var logger *log.Logger
			if verbose {
				logger = log.New(cmd.ErrOrStderr(), "watch: ", log.LstdFlags)
			}

			ch, err := realtime.Dial(cmd.Context(), app.ServerURL, app.Token, logger)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ch.Close()

			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Open(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			merge := sync.NewMergeHandler(s.Store, logger)

			for _, id := range projectIDs {
				if err := ch.JoinProject(cmd.Context(), id); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.LoadTasks(cmd.Context(), id); err != nil {
					return writeErr(cmd, err)
				}
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(stop)

			out := cmd.OutOrStdout()
			fmt.Fprintln(cmd.ErrOrStderr(), "watching; ctrl-c to stop")
			for {
				select {
				case ev, ok := <-ch.Events():
					if !ok {
						return nil
					}
					merge.Apply(ev)
					printEvent(out, ev)
				case <-stop:
					return nil
				case <-cmd.Context().Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().Int64SliceVar(&projectIDs, "project", nil, "Project id to watch (repeatable)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log channel internals to stderr")
	return cmd
}

func printEvent(w io.Writer, ev realtime.Event) {
	action := string(ev.Action)
	switch ev.Action {
	case realtime.ActionCreated:
		action = watchCreated.Render(action)
	case realtime.ActionUpdated:
		action = watchUpdated.Render(action)
	case realtime.ActionDeleted:
		action = watchDeleted.Render(action)
	}
	label := ""
	if ev.Payload != nil {
		for _, key := range []string{"title", "Title", "name", "Name"} {
			if v, ok := ev.Payload[key].(string); ok && v != "" {
				label = " " + v
				break
			}
		}
	}
	fmt.Fprintf(w, "%s %s %s #%d%s\n",
		watchTimeStyle.Render(time.Now().Format("15:04:05")),
		watchKindStyle.Render(string(ev.Kind)),
		action,
		ev.ID,
		label,
	)
}
