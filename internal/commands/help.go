package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tarefas/internal/config"
	"tarefas/internal/exitcode"
	"tarefas/internal/tasksync"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "tarefas help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, in io.Reader, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tarefas                                   List tasks
  tarefas list [common flags] [--ids]       List tasks (alias: ls)
  tarefas add [common flags] <title...>     Create a task (alias: create)
  tarefas edit [common flags] <ref> <title...>
  tarefas toggle [common flags] <ref>       Flip pending/done (alias: done)
  tarefas rm [common flags] [--yes] <ref>   Delete a task (alias: delete)
  tarefas config show
  tarefas config set <key> <value>          Keys: base_url, dialect, retries, timeout_ms
  tarefas help
  tarefas version

<ref> is the task number shown by list, or @<id> for a server id.

Common flags:
  --config <dir>        Override config directory
  --base-url <url>      API root, e.g. http://localhost:3000
  --timeout <duration>  Per-request timeout, e.g. 5s
  --quiet               Suppress informational output
  --debug               Print debug logs to stderr
`
