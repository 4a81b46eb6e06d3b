package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nexsupply/nexi/internal/presentation/graph"
	"github.com/nexsupply/nexi/internal/runtime"
	"github.com/nexsupply/nexi/pkg/domain"
)

type conversationResponse struct {
	Conversation *domain.ConversationState `json:"conversation"`
	Prompt       *runtime.Prompt           `json:"prompt,omitempty"`
	// Messages are the transcript entries added by the call.
	Messages []domain.Message `json:"messages,omitempty"`
	Done     bool             `json:"done"`
}

type startRequest struct {
	ExternalContext *domain.ExternalContext `json:"external_context"`
}

type answerRequest struct {
	Answer any `json:"answer"`
}

type reviseRequest struct {
	NodeID string `json:"node_id"`
	Answer any    `json:"answer"`
}

func (s *Server) view(state *domain.ConversationState) (conversationResponse, error) {
	resp := conversationResponse{Conversation: state, Done: state.Terminated()}
	if resp.Done {
		return resp, nil
	}
	p, err := s.svc.Engine().Prompt(state)
	if err != nil {
		return resp, err
	}
	resp.Prompt = &p
	return resp, nil
}

// StartConversation handles the POST /conversations request.
func (s *Server) StartConversation(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, http.StatusBadRequest, failure{Error: domain.KindValidation, Detail: "invalid request body"})
		return
	}

	state, prompt, err := s.svc.StartConversation(r.Context(), body.ExternalContext)
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}
	s.logger.Info("conversation started", "conversation_id", state.ID)
	s.writeJSON(w, http.StatusCreated, conversationResponse{
		Conversation: state,
		Prompt:       &prompt,
		Messages:     state.Messages,
	})
}

// GetConversation handles the GET /conversations/{id} request.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.Conversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}
	resp, err := s.view(state)
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// DeleteConversation handles the DELETE /conversations/{id} request.
func (s *Server) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.DeleteConversation(r.Context(), id); err != nil {
		s.respondError(w, r, "", err)
		return
	}
	s.streams.Publish(Event{Type: EventDeleted, ConversationID: id})
	w.WriteHeader(http.StatusNoContent)
}

// AnswerConversation handles the POST /conversations/{id}/answers request.
func (s *Server) AnswerConversation(w http.ResponseWriter, r *http.Request) {
	var body answerRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, http.StatusBadRequest, failure{Error: domain.KindValidation, Detail: "invalid request body"})
		return
	}

	id := chi.URLParam(r, "id")
	state, step, err := s.svc.Answer(r.Context(), id, body.Answer)
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}
	s.streams.Publish(Event{
		Type:           EventAnswered,
		ConversationID: id,
		NodeID:         state.CurrentNodeID,
		Status:         state.Status,
		Messages:       step.Messages,
	})
	s.writeJSON(w, http.StatusOK, conversationResponse{
		Conversation: state,
		Prompt:       step.Next,
		Messages:     step.Messages,
		Done:         step.Done,
	})
}

// ReviseConversation handles the POST /conversations/{id}/revise request.
func (s *Server) ReviseConversation(w http.ResponseWriter, r *http.Request) {
	var body reviseRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, http.StatusBadRequest, failure{Error: domain.KindValidation, Detail: "invalid request body"})
		return
	}

	id := chi.URLParam(r, "id")
	before, err := s.svc.Conversation(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}
	state, err := s.svc.Revise(r.Context(), id, body.NodeID, body.Answer)
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}
	resp, err := s.view(state)
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}
	if n := len(before.Messages); n <= len(state.Messages) {
		resp.Messages = state.Messages[n:]
	}
	s.streams.Publish(Event{
		Type:           EventRevised,
		ConversationID: id,
		NodeID:         state.CurrentNodeID,
		Status:         state.Status,
		Messages:       resp.Messages,
	})
	s.writeJSON(w, http.StatusOK, resp)
}

// GetSummary handles the GET /conversations/{id}/summary request.
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, "", err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.svc.Graph()
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(graph.GenerateMermaid(g, nil)))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"start": g.Start(),
		"nodes": g.Nodes(),
	})
}
