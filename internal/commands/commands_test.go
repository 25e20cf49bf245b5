package commands_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tarefas/internal/commands"
	"tarefas/internal/config"
	"tarefas/internal/exitcode"
	"tarefas/internal/service"
	"tarefas/internal/tasksync"
	"tarefas/internal/testutil"
	"tarefas/internal/wire"
)

// runCommand runs cmd against svc through a fresh sync client.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runCommandWithInput(t, cmd, svc, args, "", quiet)
}

func runCommandWithInput(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, input string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:     t.TempDir(),
		Timeout: config.DefaultTimeout,
		Retries: config.DefaultRetries,
		Dialect: wire.Status,
		Quiet:   quiet,
	}

	var client *tasksync.Client
	if svc != nil {
		client = tasksync.New(svc)
	}

	code = cmd.Run(context.Background(), cfg, client, args, strings.NewReader(input), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "tarefas 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"Usage:", "tarefas add", "@<id>", "--base-url"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestListCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Write spec", service.Pending)
	svc.AddTask("Review PR", service.Done)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	want := "   1  [ ] Write spec\n   2  [x] Review PR\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestListCommand_IDs(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Write spec", service.Pending)

	cmd := &commands.ListCmd{}
	cmd.SetShowIDs(true)
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "   1  [ ] Write spec  @1\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, svc, nil, true)
	if stdout != "" {
		t.Errorf("expected no output with --quiet, got %q", stdout)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = errors.New("connection refused")

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_CollectionNotFound(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = fmt.Errorf("%w: HTTP 404", service.ErrNotFound)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestToggleCommand_CollectionNotFound(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", service.Pending)
	svc.ListTasksErr = service.ErrNotFound

	_, _, code := runCommand(t, &commands.ToggleCmd{}, svc, []string{"1"}, false)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if svc.Calls("UpdateTask") != 0 {
		t.Error("expected no update after a failed refresh")
	}
}

func TestAddCommand(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	stored := svc.Stored()
	if len(stored) != 1 || stored[0].Title != "Buy milk" || stored[0].State != service.Pending {
		t.Errorf("unexpected stored tasks %+v", stored)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"x"}, true)
	if code != exitcode.Success || stdout != "" {
		t.Errorf("expected silent success, got %d %q", code, stdout)
	}
}

func TestAddCommand_BlankTitle(t *testing.T) {
	for _, args := range [][]string{nil, {"   "}} {
		svc := testutil.NewFakeService()

		_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, args, false)

		if code != exitcode.UserError {
			t.Errorf("%q: expected exit code %d, got %d", args, exitcode.UserError, code)
		}
		if !strings.HasPrefix(stderr, "error:") {
			t.Errorf("%q: unexpected stderr %q", args, stderr)
		}
		if svc.TotalCalls() != 0 {
			t.Errorf("%q: expected no backend calls, got %d", args, svc.TotalCalls())
		}
	}
}

func TestAddCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = errors.New("boom")

	_, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"x"}, false)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
}

func TestToggleCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", service.Pending)
	svc.AddTask("b", service.Pending)

	stdout, stderr, code := runCommand(t, &commands.ToggleCmd{}, svc, []string{"2"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	stored := svc.Stored()
	if stored[0].State != service.Pending || stored[1].State != service.Done {
		t.Errorf("expected only task 2 done, got %+v", stored)
	}

	// Toggling again flips it back.
	runCommand(t, &commands.ToggleCmd{}, svc, []string{"@2"}, false)
	if svc.Stored()[1].State != service.Pending {
		t.Errorf("expected task 2 pending again, got %+v", svc.Stored()[1])
	}
}

func TestToggleCommand_BadRefs(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", service.Pending)

	cases := []struct {
		args   []string
		stderr string
	}{
		{nil, "error: task reference required\n"},
		{[]string{"x1"}, "error: invalid task reference: x1\n"},
		{[]string{"0"}, "error: task number out of range: 0\n"},
		{[]string{"5"}, "error: task number out of range: 5\n"},
		{[]string{"@nope"}, "error: task not found: @nope\n"},
	}
	for _, tc := range cases {
		_, stderr, code := runCommand(t, &commands.ToggleCmd{}, svc, tc.args, false)
		if code != exitcode.UserError {
			t.Errorf("%q: expected exit code %d, got %d", tc.args, exitcode.UserError, code)
		}
		if stderr != tc.stderr {
			t.Errorf("%q: expected stderr %q, got %q", tc.args, tc.stderr, stderr)
		}
	}
	if n := svc.Calls("UpdateTask"); n != 0 {
		t.Errorf("expected no updates, got %d", n)
	}
}

func TestToggleCommand_DeletedElsewhere(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", service.Pending)
	svc.UpdateTaskErr = service.ErrNotFound

	_, stderr, code := runCommand(t, &commands.ToggleCmd{}, svc, []string{"1"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "task not found") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestEditCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("old", service.Done)

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"1", "new", "title"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	got := svc.Stored()[0]
	if got.Title != "new title" || got.State != service.Done {
		t.Errorf("unexpected task %+v", got)
	}
}

func TestEditCommand_MissingTitle(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("old", service.Pending)

	for _, args := range [][]string{{"1"}, {"1", "  "}} {
		_, _, code := runCommand(t, &commands.EditCmd{}, svc, args, false)
		if code != exitcode.UserError {
			t.Errorf("%q: expected exit code %d, got %d", args, exitcode.UserError, code)
		}
	}
	if svc.Stored()[0].Title != "old" {
		t.Errorf("title changed: %+v", svc.Stored()[0])
	}
}

func TestRmCommand_Confirmed(t *testing.T) {
	for _, answer := range []string{"y\n", "YES\n", "y"} {
		svc := testutil.NewFakeService()
		svc.AddTask("Write spec", service.Pending)

		stdout, stderr, code := runCommandWithInput(t, &commands.RmCmd{}, svc, []string{"1"}, answer, false)
		if code != exitcode.Success {
			t.Fatalf("%q: expected exit code %d, got %d (stderr %q)", answer, exitcode.Success, code, stderr)
		}
		if stderr != `delete "Write spec"? [y/N] ` {
			t.Errorf("%q: unexpected prompt %q", answer, stderr)
		}
		if stdout != "ok\n" {
			t.Errorf("%q: expected 'ok', got %q", answer, stdout)
		}
		if len(svc.Stored()) != 0 {
			t.Errorf("%q: expected task deleted", answer)
		}
	}
}

func TestRmCommand_Declined(t *testing.T) {
	for _, answer := range []string{"", "n\n", "\n", "sure\n"} {
		svc := testutil.NewFakeService()
		svc.AddTask("Write spec", service.Pending)

		_, stderr, code := runCommandWithInput(t, &commands.RmCmd{}, svc, []string{"1"}, answer, false)
		if code != exitcode.UserError {
			t.Errorf("%q: expected exit code %d, got %d", answer, exitcode.UserError, code)
		}
		if !strings.HasSuffix(stderr, "error: aborted\n") {
			t.Errorf("%q: unexpected stderr %q", answer, stderr)
		}
		if svc.Calls("DeleteTask") != 0 || len(svc.Stored()) != 1 {
			t.Errorf("%q: expected no delete", answer)
		}
	}
}

func TestRmCommand_Yes(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", service.Pending)
	svc.AddTask("b", service.Pending)

	cmd := &commands.RmCmd{}
	cmd.SetYes(true)
	_, stderr, code := runCommand(t, cmd, svc, []string{"@1"}, true)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "" {
		t.Errorf("expected no prompt, got %q", stderr)
	}
	stored := svc.Stored()
	if len(stored) != 1 || stored[0].Title != "b" {
		t.Errorf("unexpected stored tasks %+v", stored)
	}
}

func TestRmCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", service.Pending)
	svc.DeleteTaskErr = errors.New("503")

	cmd := &commands.RmCmd{}
	cmd.SetYes(true)
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestConfigCommand_SetAndShow(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Dir: dir, Timeout: config.DefaultTimeout, Retries: config.DefaultRetries, Dialect: wire.Status}
	cmd := &commands.ConfigCmd{}

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, []string{"set", "base_url", "http://localhost:3000"}, nil, &out, &errOut)
	if code != exitcode.Success {
		t.Fatalf("set: expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errOut.String())
	}
	if _, err := os.Stat(filepath.Join(dir, config.ConfigFile)); err != nil {
		t.Errorf("expected config file: %v", err)
	}

	cfg.Timeout = 1500 * time.Millisecond
	out.Reset()
	code = cmd.Run(context.Background(), cfg, nil, []string{"show"}, nil, &out, &errOut)
	if code != exitcode.Success {
		t.Fatalf("show: expected exit code %d, got %d", exitcode.Success, code)
	}
	want := "base_url=http://localhost:3000\n" +
		"dialect=status\n" +
		"path=" + filepath.Join(dir, config.ConfigFile) + "\n" +
		"retries=2\n" +
		"timeout_ms=1500\n"
	if out.String() != want {
		t.Errorf("show:\nwant %q\n got %q", want, out.String())
	}
}

func TestConfigCommand_Errors(t *testing.T) {
	cases := [][]string{
		{"set", "base_url"},
		{"set", "colour", "blue"},
		{"set", "base_url", "localhost"},
		{"reset"},
	}
	for _, args := range cases {
		_, stderr, code := runCommand(t, &commands.ConfigCmd{}, nil, args, false)
		if code != exitcode.UserError {
			t.Errorf("%q: expected exit code %d, got %d", args, exitcode.UserError, code)
		}
		if !strings.HasPrefix(stderr, "error:") {
			t.Errorf("%q: unexpected stderr %q", args, stderr)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&commands.ListCmd{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if c, ok := r.Find("create"); !ok || c.Name() != "add" {
		t.Errorf("Find(create) = %v, %v", c, ok)
	}
	if c, ok := r.Find("ls"); !ok || c.Name() != "list" {
		t.Errorf("Find(ls) = %v, %v", c, ok)
	}
	if err := r.Register(&commands.AddCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	all := r.All()
	if len(all) != 2 || all[0].Name() != "add" || all[1].Name() != "list" {
		t.Errorf("All = %v", all)
	}
}

func TestDefaultRegistry(t *testing.T) {
	for _, name := range []string{"list", "ls", "add", "create", "edit", "toggle", "done", "rm", "delete", "config", "help", "version"} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}
}
