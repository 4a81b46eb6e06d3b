package http

import (
	"errors"
	"net/http"

	"github.com/nexsupply/nexi/pkg/domain"
)

// Error kinds of the HTTP layer that have no pipeline counterpart.
const (
	kindNotFound   domain.ErrorKind = "not_found"
	kindTerminated domain.ErrorKind = "conversation_terminated"
)

// failure is the body of every unsuccessful response.
type failure struct {
	OK        bool             `json:"ok"`
	Error     domain.ErrorKind `json:"error"`
	AttemptID string           `json:"attempt_id,omitempty"`
	Detail    string           `json:"detail,omitempty"`
	NodeID    string           `json:"node_id,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Limit     int              `json:"limit,omitempty"`
	Raw       string           `json:"raw,omitempty"`
	Blacklist *blacklistHit    `json:"blacklist,omitempty"`
}

type blacklistHit struct {
	Identifier  string  `json:"identifier"`
	SupplierID  string  `json:"supplier_id"`
	CompanyName string  `json:"company_name"`
	RiskScore   float64 `json:"risk_score"`
	Note        string  `json:"note"`
}

// classify maps an error to its status code and response body.
func classify(err error) (int, failure) {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound), errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound, failure{Error: kindNotFound, Detail: err.Error()}
	case errors.Is(err, domain.ErrTerminated):
		return http.StatusConflict, failure{Error: kindTerminated, Detail: err.Error()}
	case errors.Is(err, domain.ErrUnknownNode):
		return http.StatusBadRequest, failure{Error: domain.KindValidation, Detail: err.Error()}
	}

	var (
		verr *domain.ValidationError
		cerr *domain.ComplianceBlockError
		qerr *domain.QuotaExceededError
		merr *domain.MalformedResponseError
		uerr *domain.UpstreamUnavailableError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, failure{Error: verr.Kind(), Detail: verr.Reason, NodeID: verr.NodeID}
	case errors.As(err, &cerr):
		return http.StatusForbidden, failure{
			Error:  cerr.Kind(),
			Detail: err.Error(),
			Blacklist: &blacklistHit{
				Identifier:  cerr.Identifier,
				SupplierID:  cerr.Entry.SupplierID,
				CompanyName: cerr.Entry.CompanyName,
				RiskScore:   cerr.Entry.RiskScore,
				Note:        cerr.Entry.Note,
			},
		}
	case errors.As(err, &qerr):
		return http.StatusTooManyRequests, failure{Error: qerr.Kind(), Reason: qerr.Reason, Limit: qerr.Limit}
	case errors.As(err, &merr):
		return http.StatusBadGateway, failure{Error: merr.Kind(), Detail: merr.Reason, Raw: merr.Raw}
	case errors.As(err, &uerr):
		return http.StatusServiceUnavailable, failure{Error: uerr.Kind(), Detail: err.Error()}
	}
	return http.StatusInternalServerError, failure{Error: domain.KindInternal, Detail: "internal error"}
}

// respondError writes err as a failure response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, attemptID string, err error) {
	status, body := classify(err)
	body.AttemptID = attemptID
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "kind", body.Error, "err", err)
	}
	s.fail(w, r, status, body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, body failure) {
	body.OK = false
	if status < http.StatusInternalServerError {
		s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "kind", body.Error, "detail", body.Detail)
	}
	s.writeJSON(w, status, body)
}
