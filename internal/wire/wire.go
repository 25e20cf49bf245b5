// Package wire encodes and decodes the JSON bodies of the /tarefas resource.
//
// Two server dialects exist in the wild. The "status" dialect identifies
// tasks by a string "_id" and carries completion as the enumerated string
// "status" ("Pendente" or "Concluída"). The "flag" dialect identifies tasks
// by a numeric "id" and carries completion as "concluida" (0 or 1), and
// wraps list responses in {"data": [...]}.
//
// Decoding accepts either dialect. Encoding writes the one selected.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tarefas/internal/service"
)

// Dialect selects the JSON representation used when encoding.
type Dialect string

const (
	// Status is the "_id" + "status" string enum representation.
	Status Dialect = "status"

	// Flag is the numeric "id" + "concluida" 0/1 representation.
	Flag Dialect = "flag"
)

// Status values of the status dialect.
const (
	StatusPending = "Pendente"
	StatusDone    = "Concluída"
)

// ParseDialect validates a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case Status, Flag:
		return d, nil
	case "":
		return Status, nil
	default:
		return "", fmt.Errorf("unknown dialect: %s", s)
	}
}

// Fields is the body of a create or update request.
// Nil fields were not sent.
type Fields struct {
	Title *string
	State *service.CompletionState
}

// rawRecord is the union of both dialects' task and request fields.
type rawRecord struct {
	ID        json.RawMessage `json:"id"`
	MongoID   string          `json:"_id"`
	Titulo    *string         `json:"titulo"`
	Status    *string         `json:"status"`
	Concluida json.RawMessage `json:"concluida"`
}

type statusTask struct {
	ID     string `json:"_id"`
	Titulo string `json:"titulo"`
	Status string `json:"status"`
}

type flagTask struct {
	ID        json.Number `json:"id"`
	Titulo    string      `json:"titulo"`
	Concluida int         `json:"concluida"`
}

type statusFields struct {
	Titulo *string `json:"titulo,omitempty"`
	Status *string `json:"status,omitempty"`
}

type flagFields struct {
	Titulo    *string `json:"titulo,omitempty"`
	Concluida *int    `json:"concluida,omitempty"`
}

type flagEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeList decodes a list response, either a bare array or {"data": [...]}.
func DecodeList(data []byte) ([]service.Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	if data[0] == '{' {
		var env flagEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("invalid list envelope: %w", err)
		}
		if env.Data == nil {
			return nil, fmt.Errorf("list envelope has no data field")
		}
		data = env.Data
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("invalid task list: %w", err)
	}

	tasks := make([]service.Task, 0, len(raws))
	seen := make(map[service.TaskID]bool, len(raws))
	for i, raw := range raws {
		task, err := DecodeTask(raw)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		if seen[task.ID] {
			return nil, fmt.Errorf("duplicate task id: %s", task.ID)
		}
		seen[task.ID] = true
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// DecodeTask decodes a single task in either dialect.
func DecodeTask(data []byte) (service.Task, error) {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return service.Task{}, fmt.Errorf("invalid task: %w", err)
	}

	id, err := decodeID(raw)
	if err != nil {
		return service.Task{}, err
	}

	state, err := decodeState(raw)
	if err != nil {
		return service.Task{}, err
	}

	task := service.Task{ID: id}
	if raw.Titulo != nil {
		task.Title = *raw.Titulo
	}
	if state == nil {
		task.State = service.Pending
	} else {
		task.State = *state
	}
	return task, nil
}

// DecodeFields decodes a create or update request body in either dialect.
func DecodeFields(data []byte) (Fields, error) {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return Fields{}, fmt.Errorf("invalid body: %w", err)
	}
	state, err := decodeState(raw)
	if err != nil {
		return Fields{}, err
	}
	return Fields{Title: raw.Titulo, State: state}, nil
}

// EncodeFields encodes a create or update request body.
func (d Dialect) EncodeFields(f Fields) ([]byte, error) {
	if d == Flag {
		body := flagFields{Titulo: f.Title}
		if f.State != nil {
			v := flagValue(*f.State)
			body.Concluida = &v
		}
		return json.Marshal(body)
	}

	body := statusFields{Titulo: f.Title}
	if f.State != nil {
		v := statusValue(*f.State)
		body.Status = &v
	}
	return json.Marshal(body)
}

// EncodeTask encodes a single task.
func (d Dialect) EncodeTask(t service.Task) ([]byte, error) {
	if d == Flag {
		ft, err := toFlagTask(t)
		if err != nil {
			return nil, err
		}
		return json.Marshal(ft)
	}
	return json.Marshal(toStatusTask(t))
}

// EncodeList encodes a list response. The flag dialect wraps it in
// {"data": [...]}.
func (d Dialect) EncodeList(tasks []service.Task) ([]byte, error) {
	if d == Flag {
		items := make([]flagTask, 0, len(tasks))
		for _, t := range tasks {
			ft, err := toFlagTask(t)
			if err != nil {
				return nil, err
			}
			items = append(items, ft)
		}
		return json.Marshal(struct {
			Data []flagTask `json:"data"`
		}{Data: items})
	}

	items := make([]statusTask, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, toStatusTask(t))
	}
	return json.Marshal(items)
}

func toStatusTask(t service.Task) statusTask {
	return statusTask{ID: string(t.ID), Titulo: t.Title, Status: statusValue(t.State)}
}

func toFlagTask(t service.Task) (flagTask, error) {
	if _, err := strconv.ParseInt(string(t.ID), 10, 64); err != nil {
		return flagTask{}, fmt.Errorf("flag dialect needs numeric ids, got %q", t.ID)
	}
	return flagTask{ID: json.Number(t.ID), Titulo: t.Title, Concluida: flagValue(t.State)}, nil
}

func statusValue(s service.CompletionState) string {
	if s == service.Done {
		return StatusDone
	}
	return StatusPending
}

func flagValue(s service.CompletionState) int {
	if s == service.Done {
		return 1
	}
	return 0
}

func decodeID(raw rawRecord) (service.TaskID, error) {
	if raw.MongoID != "" {
		return service.TaskID(raw.MongoID), nil
	}

	id := bytes.TrimSpace(raw.ID)
	if len(id) == 0 || bytes.Equal(id, []byte("null")) {
		return "", fmt.Errorf("task has no id")
	}

	if id[0] == '"' {
		var s string
		if err := json.Unmarshal(id, &s); err != nil {
			return "", fmt.Errorf("invalid task id: %w", err)
		}
		if s == "" {
			return "", fmt.Errorf("task has no id")
		}
		return service.TaskID(s), nil
	}

	var n json.Number
	if err := json.Unmarshal(id, &n); err != nil {
		return "", fmt.Errorf("invalid task id: %s", id)
	}
	return service.TaskID(n.String()), nil
}

// decodeState returns nil when neither state field is present.
func decodeState(raw rawRecord) (*service.CompletionState, error) {
	if raw.Status != nil {
		s, err := parseStatus(*raw.Status)
		if err != nil {
			return nil, err
		}
		return &s, nil
	}

	flag := bytes.TrimSpace(raw.Concluida)
	if len(flag) == 0 || bytes.Equal(flag, []byte("null")) {
		return nil, nil
	}

	var s service.CompletionState
	switch string(flag) {
	case "0", "false":
		s = service.Pending
	case "1", "true":
		s = service.Done
	default:
		return nil, fmt.Errorf("invalid concluida value: %s", flag)
	}
	return &s, nil
}

func parseStatus(v string) (service.CompletionState, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "pendente":
		return service.Pending, nil
	case "concluída", "concluida":
		return service.Done, nil
	default:
		return service.Pending, fmt.Errorf("invalid status value: %q", v)
	}
}
