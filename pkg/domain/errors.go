package domain

import (
	"errors"
	"fmt"
)

// ErrConversationNotFound is returned when a conversation ID cannot be found in the store.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrTerminated is returned when advancing a conversation that already reached a terminal node.
var ErrTerminated = errors.New("conversation already terminated")

// ErrUnknownNode is returned when the state points at a node missing from the graph.
var ErrUnknownNode = errors.New("unknown node")

// ErrResultNotFound is returned when no stored analysis exists for an attempt.
var ErrResultNotFound = errors.New("analysis result not found")

// ErrorKind names a failure class of the intake and analysis pipeline.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation_error"
	KindComplianceBlock     ErrorKind = "compliance_block"
	KindMalformedResponse   ErrorKind = "malformed_response"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindQuotaExceeded       ErrorKind = "quota_exceeded"
	KindInternal            ErrorKind = "internal_error"
)

// KindOf resolves the kind of err through wrapping.
func KindOf(err error) ErrorKind {
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// ValidationError is a rejected answer or a missing mandatory field.
type ValidationError struct {
	NodeID string // Node or request field
	Reason string
	Value  any
	// Err is the underlying cause, if any.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%q: %s", e.NodeID, e.Reason)
	}
	return fmt.Sprintf("%q: %s (got %v)", e.NodeID, e.Reason, e.Value)
}

func (e *ValidationError) Kind() ErrorKind { return KindValidation }

func (e *ValidationError) Unwrap() error { return e.Err }

// ComplianceBlockError stops the pipeline when the reference matches a blacklist entry.
type ComplianceBlockError struct {
	Identifier string
	Entry      BlacklistEntry
}

func (e *ComplianceBlockError) Error() string {
	return fmt.Sprintf("supplier %q (%s) is blacklisted: %s", e.Entry.CompanyName, e.Entry.SupplierID, e.Entry.Note)
}

func (e *ComplianceBlockError) Kind() ErrorKind { return KindComplianceBlock }

// MalformedResponseError means the estimator output could not be parsed or
// lacked a mandatory group.
type MalformedResponseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed estimator response: %s: %v", e.Reason, e.Err)
	}
	return "malformed estimator response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Kind() ErrorKind { return KindMalformedResponse }

// UpstreamUnavailableError wraps a transport or service failure of the estimator.
type UpstreamUnavailableError struct {
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("estimation service unavailable: %v", e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

func (e *UpstreamUnavailableError) Kind() ErrorKind { return KindUpstreamUnavailable }

// Quota reasons.
const (
	QuotaUserDaily      = "user_daily_limit"
	QuotaAnonymousDaily = "anonymous_daily_limit"
)

// QuotaExceededError is returned when the caller hit a usage limit before
// the external call was attempted.
type QuotaExceededError struct {
	Reason  string
	Subject string
	Limit   int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %q: %s (limit %d)", e.Subject, e.Reason, e.Limit)
}

func (e *QuotaExceededError) Kind() ErrorKind { return KindQuotaExceeded }
