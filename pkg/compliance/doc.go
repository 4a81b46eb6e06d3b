// Package compliance implements the supplier blacklist kill switch.
//
// The Gate checks the reference identifier of an analysis request (a
// supplier URL or a company name) against a blacklist before any external
// call is made. Identifiers are expanded into candidate company tokens
// (see Candidates) and each candidate is looked up in an Index built from
// the blacklist dataset.
package compliance
