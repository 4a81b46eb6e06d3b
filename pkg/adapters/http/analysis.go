package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nexsupply/nexi"
	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/intake"
)

// analyzeRequest is the body of POST /analyze. Exactly one of Answers and
// UserContext is expected; Answers wins when both are sent.
type analyzeRequest struct {
	AttemptID       string                  `json:"attempt_id"`
	Reference       string                  `json:"reference"`
	Answers         map[string]any          `json:"answers"`
	ExternalContext *domain.ExternalContext `json:"external_context"`
	UserContext     *intake.UserContext     `json:"user_context"`
}

type analysisResponse struct {
	OK        bool                  `json:"ok"`
	AttemptID string                `json:"attempt_id"`
	Analysis  domain.AnalysisResult `json:"analysis"`
}

// Analyze handles the POST /analyze request.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, http.StatusBadRequest, failure{Error: domain.KindValidation, Detail: "invalid request body"})
		return
	}

	attemptID, err := attemptIDOf(body.AttemptID)
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}

	req, err := s.requestOf(body)
	if err != nil {
		s.respondError(w, r, attemptID, err)
		return
	}
	s.run(w, r, attemptID, req)
}

func (s *Server) requestOf(body analyzeRequest) (domain.AnalysisRequest, error) {
	switch {
	case len(body.Answers) > 0:
		if body.Reference != "" {
			body.Answers[intake.NodeReference] = body.Reference
		}
		return s.svc.RequestFromAnswers(body.Answers, body.ExternalContext)
	case body.UserContext != nil && !body.UserContext.IsZero():
		uc := *body.UserContext
		if uc.RefLink == "" {
			uc.RefLink = body.Reference
		}
		return s.svc.Mapper().FromUserContext(uc)
	}
	return domain.AnalysisRequest{}, &domain.ValidationError{NodeID: "answers", Reason: "answers or user_context is required"}
}

// AnalyzeConversation handles the POST /conversations/{id}/analyze request.
func (s *Server) AnalyzeConversation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AttemptID string `json:"attempt_id"`
	}
	if err := decode(r, &body); err != nil {
		s.fail(w, r, http.StatusBadRequest, failure{Error: domain.KindValidation, Detail: "invalid request body"})
		return
	}
	attemptID, err := attemptIDOf(body.AttemptID)
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}

	attempt := analysis.NewAttempt(attemptID, subjectOf(r))
	_, result, err := s.svc.AnalyzeConversation(r.Context(), chi.URLParam(r, "id"), attempt)
	s.finish(w, r, attemptID, result, err)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, attemptID string, req domain.AnalysisRequest) {
	attempt := analysis.NewAttempt(attemptID, subjectOf(r))
	result, err := s.svc.Analyze(r.Context(), attempt, req)
	s.finish(w, r, attemptID, result, err)
}

func (s *Server) finish(w http.ResponseWriter, r *http.Request, attemptID string, result domain.AnalysisResult, err error) {
	if err != nil {
		s.respondError(w, r, attemptID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analysisResponse{OK: true, AttemptID: attemptID, Analysis: result})
}

// GetAnalysis handles the GET /analyses/{attemptId} request.
func (s *Server) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Result(r.Context(), chi.URLParam(r, "attemptId"))
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func attemptIDOf(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	return nexi.NewID()
}
