package ir

// Predicate vocabulary. Topology predicates describe the workflow shape at
// design time; marker predicates carry execution state and are only ever
// written through verb deltas.
const (
	// Topology.
	PropFlowsTo          PropID = "flowsTo"          // subject -> successor node
	PropDefaultFlow      PropID = "defaultFlow"      // XOR-split fallback target
	PropFlowGuard        PropID = "flowGuard"        // Map{target, key, op, value, priority}
	PropSplitKind        PropID = "splitKind"        // "and" | "xor" | "or" | "deferred" | "mutex" | "mi-*"
	PropJoinKind         PropID = "joinKind"         // "and" | "first" | "partial" | "active" | "dynamic"
	PropJoinThreshold    PropID = "joinThreshold"    // Int N for partial joins
	PropInstanceCount    PropID = "instanceCount"    // Int N for static multiple instances
	PropMutexGroup       PropID = "mutexGroup"       // Str group name
	PropCancelRegion     PropID = "cancelRegion"     // Str region name (membership)
	PropCancelScope      PropID = "cancelScope"      // "self" | "region" | "case" | "instances" | "task"
	PropCaseID           PropID = "caseID"           // Str case/instance identity
	PropExceptionHandler PropID = "exceptionHandler" // Str handler node id
	PropTimerExpiresAt   PropID = "timerExpiresAt"   // Int tick deadline

	// Execution markers.
	PropHasToken          PropID = "hasToken"          // Bool(true) while node is active
	PropActivatedAt       PropID = "activatedAt"       // Int logical tick of activation
	PropCompletedAt       PropID = "completedAt"       // Str tx id that completed the node
	PropVoidedAt          PropID = "voidedAt"          // Str tx id that voided the node
	PropTerminatedReason  PropID = "terminatedReason"  // Str reason enum below
	PropParentTask        PropID = "parentTask"        // Str parent node of an MI child
	PropAwaitingSelection PropID = "awaitingSelection" // Bool(true) for deferred choice
)

// Terminated reasons stamped alongside voidedAt.
const (
	ReasonTimeout   = "timeout"
	ReasonCancelled = "cancelled"
	ReasonException = "exception"
	ReasonVoid      = "void"
	ReasonDeadlock  = "deadlock"
)

// Split kinds recognized by shape detection.
const (
	SplitAnd           = "and"
	SplitXor           = "xor"
	SplitOr            = "or"
	SplitDeferred      = "deferred"
	SplitMutex         = "mutex"
	SplitMIStatic      = "mi-static"
	SplitMIDynamic     = "mi-dynamic"
	SplitMIIncremental = "mi-incremental"
)

// Join kinds recognized by shape detection.
const (
	JoinAnd     = "and"
	JoinFirst   = "first"
	JoinPartial = "partial"
	JoinActive  = "active"
	JoinDynamic = "dynamic"
)

// Reserved TxContext.data keys consumed by the kernel.
const (
	// DataDynamicTargets names the List whose length drives Copy with
	// dynamic cardinality.
	DataDynamicTargets = "targets"

	// DataDynamicThreshold names the Int read by Await with dynamic
	// threshold.
	DataDynamicThreshold = "threshold"
)
