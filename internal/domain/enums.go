package domain

type ItemKind string

const (
	KindLesson    ItemKind = "lesson"
	KindQuiz      ItemKind = "quiz"
	KindMilestone ItemKind = "milestone"
	KindRefresher ItemKind = "refresher"
)

// ValidItemKinds is the canonical set of accepted item kind strings.
var ValidItemKinds = map[string]bool{
	"lesson": true, "quiz": true, "milestone": true, "refresher": true,
}

type EffortLevel string

const (
	EffortLight    EffortLevel = "light"
	EffortModerate EffortLevel = "moderate"
	EffortFocus    EffortLevel = "focus"
)

// EffortLevelFor buckets a duration: under 30 minutes is light, 30 to 60 is
// moderate, anything longer is focus work.
func EffortLevelFor(minutes int) EffortLevel {
	switch {
	case minutes < 30:
		return EffortLight
	case minutes <= 60:
		return EffortModerate
	default:
		return EffortFocus
	}
}

type DeferralPressure string

const (
	PressureLow    DeferralPressure = "low"
	PressureMedium DeferralPressure = "medium"
	PressureHigh   DeferralPressure = "high"
)

type WarningCode string

const (
	WarnSnapshotUnavailable WarningCode = "SNAPSHOT_UNAVAILABLE"
	WarnNoActiveCategories  WarningCode = "NO_ACTIVE_CATEGORIES"
	WarnAdvisorTimeout      WarningCode = "ADVISOR_TIMEOUT"
	WarnAdvisorError        WarningCode = "ADVISOR_ERROR"
	WarnHorizonExhausted    WarningCode = "HORIZON_EXHAUSTED"
	WarnHorizonExtended     WarningCode = "HORIZON_EXTENDED"
	WarnModuleCycle         WarningCode = "MODULE_CYCLE"
	WarnUnknownCategory     WarningCode = "UNKNOWN_CATEGORY"
	WarnStaleDeferral       WarningCode = "STALE_DEFERRAL"
	WarnRegenerationFailed  WarningCode = "REGENERATION_FAILED"
	WarnBriefFallback       WarningCode = "BRIEF_FALLBACK"
)

type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

type RegenerationTrigger string

const (
	TriggerInitial    RegenerationTrigger = "INITIAL"
	TriggerRefresh    RegenerationTrigger = "REFRESH"
	TriggerAdjustment RegenerationTrigger = "ADJUSTMENT"
	TriggerCompletion RegenerationTrigger = "COMPLETION"
)
