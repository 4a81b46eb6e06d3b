package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/ports"
)

// Mask replaces personal data before it is written.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ConversationStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the answers, defaults
// and user messages of every node whose id matches one of the patterns.
// The caller's state is never modified; the stored copy is.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ConversationStore) ports.ConversationStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, id string, state *domain.ConversationState) error {
	masked := state.Clone()
	for nodeID, a := range masked.Answers {
		if m.sensitive(nodeID) {
			masked.Answers[nodeID] = maskAnswer(a)
		}
	}
	for nodeID, a := range masked.Defaults {
		if m.sensitive(nodeID) {
			masked.Defaults[nodeID] = maskAnswer(a)
		}
	}
	for i, msg := range masked.Messages {
		if msg.Role == domain.RoleUser && m.sensitive(msg.NodeID) {
			masked.Messages[i].Content = Mask
		}
	}
	return m.next.Save(ctx, id, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.ConversationState, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) sensitive(nodeID string) bool {
	for _, p := range m.patterns {
		if p.MatchString(nodeID) {
			return true
		}
	}
	return false
}

// maskAnswer keeps the sentinels, which carry no personal data.
func maskAnswer(a domain.Answer) domain.Answer {
	switch a.Type {
	case domain.AnswerSkipped, domain.AnswerNotSure:
		return a
	case domain.AnswerNumber:
		return domain.TextAnswer(Mask)
	case domain.AnswerMulti:
		return domain.MultiAnswer(Mask)
	}
	a.Text = Mask
	return a
}
