package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tarefas/internal/config"
	"tarefas/internal/exitcode"
	"tarefas/internal/service"
	"tarefas/internal/tasksync"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Rename a task" }
func (c *EditCmd) Usage() string      { return "tarefas edit <ref> <title...>" }
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) < 2 {
		if len(args) == 0 {
			return reportError(errOut, ErrTaskRefRequired)
		}
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	title := strings.Join(args[1:], " ")
	code := withTask(ctx, client, args, errOut, func(task service.Task) error {
		return client.Update(ctx, task.ID, service.WithTitle(title))
	})
	if code == exitcode.Success && !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return code
}
