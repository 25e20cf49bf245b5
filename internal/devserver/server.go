package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"tarefas/internal/service"
	"tarefas/internal/wire"
)

const maxRequestBody = 1 << 20

// Server serves the /tarefas resource from a Store in one wire dialect.
type Server struct {
	store   Store
	dialect wire.Dialect
	log     *slog.Logger
	router  *mux.Router
}

// New returns a Server for the /tarefas resource backed by store.
// A nil logger discards request logs.
func New(store Store, dialect wire.Dialect, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{store: store, dialect: dialect, log: log}

	r := mux.NewRouter()
	r.Use(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			m := httpsnoop.CaptureMetrics(handler, writer, request)
			s.log.Info("handled", "method", request.Method, "url", request.URL, "duration", m.Duration, "status", m.Code)
		})
	})

	r.Methods(http.MethodGet).Path("/tarefas").HandlerFunc(s.listTasks)
	r.Methods(http.MethodPost).Path("/tarefas").HandlerFunc(s.createTask)
	r.Methods(http.MethodGet).Path("/tarefas/{id}").HandlerFunc(s.getTask)
	r.Methods(http.MethodPut).Path("/tarefas/{id}").HandlerFunc(s.updateTask)
	r.Methods(http.MethodDelete).Path("/tarefas/{id}").HandlerFunc(s.deleteTask)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	body, err := s.dialect.EncodeList(tasks)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, http.StatusOK, body)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	f, ok := s.readFields(w, r)
	if !ok {
		return
	}
	if f.Title == nil || strings.TrimSpace(*f.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "titulo is required")
		return
	}

	state := service.Pending
	if f.State != nil {
		state = *f.State
	}
	task, err := s.store.Create(r.Context(), strings.TrimSpace(*f.Title), state)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeTask(w, http.StatusCreated, task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.Get(r.Context(), taskID(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeTask(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	f, ok := s.readFields(w, r)
	if !ok {
		return
	}
	if f.Title != nil {
		title := strings.TrimSpace(*f.Title)
		if title == "" {
			s.writeError(w, http.StatusBadRequest, "titulo must not be empty")
			return
		}
		f.Title = &title
	}

	task, err := s.store.Update(r.Context(), taskID(r), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeTask(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), taskID(r)); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskID(r *http.Request) service.TaskID {
	return service.TaskID(mux.Vars(r)["id"])
}

func (s *Server) readFields(w http.ResponseWriter, r *http.Request) (wire.Fields, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return wire.Fields{}, false
	}
	f, err := wire.DecodeFields(data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return wire.Fields{}, false
	}
	return f, true
}

func (s *Server) writeTask(w http.ResponseWriter, status int, task service.Task) {
	body, err := s.dialect.EncodeTask(task)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, status, body)
}

// fail maps store errors to a status code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "tarefa not found")
		return
	}
	s.log.Error("request failed", "err", err)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	s.write(w, status, body)
}

func (s *Server) write(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.log.Error("failed to write out", "err", err)
	}
}
