package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jonathan/interview-simulator/internal/followup"
	"github.com/jonathan/interview-simulator/internal/registry"
	"github.com/jonathan/interview-simulator/internal/report"
	"github.com/jonathan/interview-simulator/internal/session"
	"github.com/jonathan/interview-simulator/internal/types"
)

// handleCreateSession starts a new interview session. The call returns once
// the first round's opening question has been asked; the question itself
// arrives on the event stream and in the returned snapshot.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req types.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	practiceRound, err := s.resolvePracticeRound(r, &req)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	policy := followup.Policy{
		MaxFollowUps:   s.cfg.MaxFollowUps,
		ScoreThreshold: s.cfg.FollowUpThreshold,
		HedgeKeywords:  followup.DefaultPolicy().HedgeKeywords,
	}

	opts := session.Options{
		UserID:         req.UserID,
		Position:       req.Position,
		Mode:           req.Mode,
		PracticeRound:  practiceRound,
		Rounds:         s.rounds,
		Capability:     s.capability,
		Policy:         policy,
		Timeout:        s.cfg.AgentTimeout(),
		RetryDelay:     s.cfg.AgentRetryDelay(),
		ExcludeSkipped: s.cfg.ExcludeSkipped,
		ProfileHints:   s.profileHints(r, req.UserID),
		Sink:           s.hub.Publish,
	}
	if s.db != nil {
		opts.Store = s.db
	}

	o := session.New(opts)
	s.reg.Add(o)

	if err := o.Start(r.Context()); err != nil {
		s.reg.Remove(o.ID())
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, o.Snapshot())
}

// resolvePracticeRound picks the round for practice mode: the requested
// one, or the user's weakest dimension when the request leaves it open.
func (s *Server) resolvePracticeRound(r *http.Request, req *types.StartSessionRequest) (types.RoundKind, error) {
	if req.Mode != types.ModePractice {
		return "", nil
	}
	if req.PracticeRound != "" {
		kind := types.RoundKind(req.PracticeRound)
		if !kind.Valid() || !kind.Interviewer() {
			return "", &ErrValidation{Field: "practice_round", Message: "unknown interviewer round"}
		}
		return kind, nil
	}
	if s.db != nil {
		if p, err := s.db.GetProfile(r.Context(), req.UserID); err == nil && p != nil {
			if kind, ok := p.RecommendedPracticeRound(); ok {
				return kind, nil
			}
		}
	}
	return types.RoundTechnical, nil
}

// profileHints surfaces the user's recurring weaknesses so the agent can
// probe them.
func (s *Server) profileHints(r *http.Request, userID string) []string {
	if s.db == nil {
		return nil
	}
	p, err := s.db.GetProfile(r.Context(), userID)
	if err != nil {
		log.Printf("failed to load profile for %s: %v", userID, err)
		return nil
	}
	if p == nil {
		return nil
	}
	return p.TopWeaknesses(3)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if o, err := s.reg.Get(id); err == nil {
		s.jsonResponse(w, http.StatusOK, o.Snapshot())
		return
	}
	if s.db != nil {
		stored, err := s.db.GetSession(r.Context(), id)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		if stored != nil {
			s.jsonResponse(w, http.StatusOK, stored)
			return
		}
	}
	s.errorResponse(w, http.StatusNotFound, registry.ErrNotFound.Error())
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	o, err := s.reg.Get(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var req types.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := o.SubmitAnswer(r.Context(), req.Answer); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, o.Snapshot())
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	o, err := s.reg.Get(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := o.Skip(r.Context()); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, o.Snapshot())
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	o, err := s.reg.Get(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Reason == "" {
		body.Reason = "ended by user"
	}

	if err := o.EndEarly(body.Reason); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, o.Snapshot())
}

// handleReport renders a Markdown report for a session, live or stored.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var sess *types.Session
	if o, err := s.reg.Get(id); err == nil {
		snap := o.Snapshot()
		sess = &snap
	} else if s.db != nil {
		stored, err := s.db.GetSession(r.Context(), id)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		sess = stored
	}
	if sess == nil {
		s.errorResponse(w, http.StatusNotFound, registry.ErrNotFound.Error())
		return
	}
	if !sess.Status.Terminal() {
		s.errorResponse(w, http.StatusConflict, "session still in progress")
		return
	}

	var profile *types.UserProfile
	if s.db != nil {
		profile, _ = s.db.GetProfile(r.Context(), sess.UserID)
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(report.Markdown(sess, profile))); err != nil {
		log.Printf("failed to write report: %v", err)
	}
}

// handleEvents streams a session's events over SSE: the history so far,
// then live events until the session finishes or the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.reg.Get(id); err != nil {
		if len(s.hub.historyFor(id)) == 0 {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	history, live := s.hub.Subscribe(id)
	if live != nil {
		defer s.hub.Unsubscribe(id, live)
	}

	for _, e := range history {
		if err := sse.WriteEvent(e); err != nil {
			return
		}
	}
	if live == nil {
		return
	}

	for {
		select {
		case e, ok := <-live:
			if !ok {
				return
			}
			if err := sse.WriteEvent(e); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
