package server

import (
	"net/http"
)

// handleProfile returns a user's cumulative interview profile.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusNotFound, "no profile storage configured")
		return
	}
	p, err := s.db.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		s.errorResponse(w, http.StatusNotFound, "no interview history for user")
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleListSessions returns a user's past sessions, newest first.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.jsonResponse(w, http.StatusOK, []struct{}{})
		return
	}
	list, err := s.db.ListSessions(r.Context(), r.PathValue("id"), 20)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		s.jsonResponse(w, http.StatusOK, []struct{}{})
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}
