// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"tarefas/internal/service"
)

// Checkbox markers for each completion state.
const (
	pendingMark = "[ ]"
	doneMark    = "[x]"
)

// FormatTask formats a task line for the list command.
// Format: "{N:>4}  [ ] {TITLE}\n" with [x] for completed tasks.
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, mark(task.State), normalizeTitle(task.Title))
}

// FormatTaskWithID is FormatTask followed by the server id, for list --ids.
// Format: "{N:>4}  [ ] {TITLE}  @{ID}\n"
func FormatTaskWithID(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s  @%s\n", num, mark(task.State), normalizeTitle(task.Title), task.ID)
}

// FormatSettings prints key=value lines sorted by key.
func FormatSettings(w io.Writer, settings map[string]string) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s=%s\n", k, settings[k])
	}
}

// DisplayTitle returns the title as the list command prints it.
func DisplayTitle(task service.Task) string {
	return normalizeTitle(task.Title)
}

func mark(state service.CompletionState) string {
	if state == service.Done {
		return doneMark
	}
	return pendingMark
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
