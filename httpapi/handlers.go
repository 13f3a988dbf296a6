package httpapi

import (
	"net/http"

	"github.com/hupe1980/planmesh/core"
)

type messageRequest struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.orch.ProcessMessage(r.Context(), req.UserID, req.Message, req.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.orch.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.CloseSession(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.orch.ListSessions(r.Context(), r.PathValue("user_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*core.Session{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	entries, err := s.states.ListPausedTasks(r.Context(), r.PathValue("user_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.IndexEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.states.LoadState(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if st == nil {
		s.writeError(w, r, core.TaskNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSaveTask(w http.ResponseWriter, r *http.Request) {
	var st core.TaskState
	if err := decode(r, &st); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := s.states.SaveState(r.Context(), id, st); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.states.LoadState(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type statusRequest struct {
	Status core.TaskStatus `json:"status"`
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	ok, err := s.states.TaskExists(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, core.TaskNotFound(id))
		return
	}
	if err := s.states.UpdateTaskStatus(r.Context(), id, req.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.states.LoadState(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.states.DeleteState(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
