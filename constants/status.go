package constants

// RunState is a stage of one extraction run.
type RunState string

const (
	RunStateInit            RunState = "INIT"
	RunStateSegmenting      RunState = "SEGMENTING"
	RunStateExtracting      RunState = "EXTRACTING"
	RunStateRecovering      RunState = "RECOVERING"
	RunStateValidating      RunState = "VALIDATING"
	RunStateMerging         RunState = "MERGING"
	RunStateCrossValidating RunState = "CROSS_VALIDATING"
	RunStateDone            RunState = "DONE"
)

// RunOutcome summarizes how a finished run went, for callers rendering status.
type RunOutcome string

const (
	RunSucceeded RunOutcome = "SUCCEEDED" // every segment yielded records
	RunPartial   RunOutcome = "PARTIAL"   // some segments failed
	RunFailed    RunOutcome = "FAILED"    // all segments failed
)
