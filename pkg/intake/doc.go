// Package intake converts the answers of a finished (or partially
// finished) intake conversation into the canonical AnalysisRequest.
//
// Every request field has a fixed source priority: an explicit answer
// from the conversation, then the onboarding context, then a documented
// default. Sentinel answers (SKIPPED, NOT_SURE) never count as explicit.
package intake
