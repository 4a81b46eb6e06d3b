package compliance

import (
	"log/slog"

	"github.com/nexsupply/nexi/internal/logging"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/lookup"
)

// Lookup is the blacklist collaborator.
type Lookup interface {
	Lookup(candidate string) (domain.BlacklistEntry, bool)
}

// Decision is the outcome of a gate check.
type Decision struct {
	Blocked bool
	// Identifier is the candidate that matched.
	Identifier string
	Entry      domain.BlacklistEntry
}

// Err returns the compliance block error of a blocked decision, or nil.
func (d Decision) Err() error {
	if !d.Blocked {
		return nil
	}
	return &domain.ComplianceBlockError{Identifier: d.Identifier, Entry: d.Entry}
}

// Gate is the blacklist kill switch.
type Gate struct {
	lookup Lookup
	logger *slog.Logger
}

// Option configures the Gate.
type Option func(*Gate)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a gate over l. A nil lookup passes every reference.
func NewGate(l Lookup, opts ...Option) *Gate {
	g := &Gate{lookup: l, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check decides whether ref may proceed. Absent and skip-like references
// pass without a lookup.
func (g *Gate) Check(ref string) Decision {
	if g.lookup == nil || lookup.IsUnspecified(ref) {
		return Decision{}
	}
	for _, c := range Candidates(ref) {
		if entry, ok := g.lookup.Lookup(c); ok {
			g.logger.Warn("blacklisted supplier", "candidate", c, "supplier_id", entry.SupplierID, "company", entry.CompanyName)
			return Decision{Blocked: true, Identifier: c, Entry: entry}
		}
	}
	return Decision{}
}
