// Package analysis runs one analysis attempt: compliance gate, quota
// check, a single call to the external estimator, response validation and
// the Fallback Injector.
//
// There is no retry. Every failure is returned to the caller as one of
// the typed errors of package domain.
package analysis
