package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/dbee/internal/assistant"
	"github.com/koustreak/dbee/internal/database"
	"github.com/koustreak/dbee/internal/settings"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- session ---

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var d database.Descriptor
	if err := decode(w, r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.deps.Session.Connect(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Session.Disconnect(); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// status writes the summary, or null when not connected.
func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Session.Status())
}

func (s *Server) test(w http.ResponseWriter, r *http.Request) {
	var d database.Descriptor
	if err := decode(w, r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok, err := s.deps.Session.Test(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reachable": ok})
}

type queryRequest struct {
	SQL string `json:"sql"`
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Session.ExecuteQuery(r.Context(), req.SQL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) schema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.deps.Session.Schema(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// --- saved connections ---

func (s *Server) listConnections(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Profiles.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) saveConnection(w http.ResponseWriter, r *http.Request) {
	var d database.Descriptor
	if err := decode(w, r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.deps.Profiles.Save(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) deleteConnection(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Profiles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- editor tabs ---

func (s *Server) loadEditorTabs(w http.ResponseWriter, r *http.Request) {
	state, err := s.deps.EditorTabs.Load(r.Context(), chi.URLParam(r, "connectionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) saveEditorTabs(w http.ResponseWriter, r *http.Request) {
	var state settings.EditorState
	if err := decode(w, r, &state); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.EditorTabs.Save(r.Context(), chi.URLParam(r, "connectionID"), state); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- assistant ---

// aiSettings never returns the API key, only whether one is set.
func (s *Server) aiSettings(w http.ResponseWriter, r *http.Request) {
	cur, err := s.deps.AISettings.Read(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cur == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, cur.Public())
}

func (s *Server) saveAISettings(w http.ResponseWriter, r *http.Request) {
	var next settings.AISettings
	if err := decode(w, r, &next); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.AISettings.Save(r.Context(), next); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type messagesRequest struct {
	Messages []assistant.Message `json:"messages"`
}

type messagesResponse struct {
	Content string `json:"content"`
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req messagesRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	reply, err := s.deps.Assistant.Send(r.Context(), req.Messages)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{Content: reply})
}
