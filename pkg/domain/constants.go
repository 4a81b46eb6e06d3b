package domain

// Sentinel tokens stored verbatim in the answer map and usable in
// transition conditions.
const (
	SentinelSkipped = "SKIPPED"
	SentinelNotSure = "NOT_SURE"
)

// Unspecified is the bucket every lookup falls back to for unknown values.
const Unspecified = "unspecified"

// NoReference is the reference identifier used when the user gave none.
const NoReference = "none"

// PrefillNote is appended to a prompt whose answer was pre-filled from
// onboarding settings.
const PrefillNote = "Pre-filled from your onboarding settings. Press enter to keep it or type a new answer."

// Lead intents recorded on terminal nodes.
const (
	IntentHigh       = "high_intent"
	IntentReportOnly = "report_only"
)
