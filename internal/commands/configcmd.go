package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tarefas/internal/config"
	"tarefas/internal/exitcode"
	"tarefas/internal/output"
	"tarefas/internal/tasksync"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd implements `config show` and `config set <key> <value>`.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() string       { return "config" }
func (c *ConfigCmd) Aliases() []string  { return nil }
func (c *ConfigCmd) Synopsis() string   { return "Show or change settings" }
func (c *ConfigCmd) Usage() string      { return "tarefas config show | config set <key> <value>" }
func (c *ConfigCmd) NeedsBackend() bool { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, client *tasksync.Client, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) == 0 || args[0] == "show" {
		if len(args) > 1 {
			fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
			return exitcode.UserError
		}
		output.FormatSettings(out, map[string]string{
			"base_url":   cfg.BaseURL,
			"dialect":    string(cfg.Dialect),
			"retries":    strconv.Itoa(cfg.Retries),
			"timeout_ms": strconv.FormatInt(cfg.Timeout.Milliseconds(), 10),
			"path":       cfg.Path(),
		})
		return exitcode.Success
	}

	if args[0] != "set" {
		fmt.Fprintf(errOut, "error: unknown config subcommand: %s\n", args[0])
		return exitcode.UserError
	}
	if len(args) < 3 {
		fmt.Fprintf(errOut, "error: usage: config set <key> <value> (keys: %s)\n", strings.Join(config.Keys(), ", "))
		return exitcode.UserError
	}

	if err := cfg.Set(args[1], strings.Join(args[2:], " ")); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
