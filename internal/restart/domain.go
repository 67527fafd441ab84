package restart

import "time"

// Role is the operator class a coordinator acts as. Operations drives the
// checklist; support owns the final acknowledgment gate.
type Role string

const (
	RoleOperations Role = "operations"
	RoleSupport    Role = "support"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleOperations, RoleSupport:
		return Role(raw), true
	default:
		return "", false
	}
}

// State is the coordinator's position in one session.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateResuming      State = "resuming"
	StateNoActiveSet   State = "no-active-set"
	StateActiveSet     State = "active-set"
	StateAllComplete   State = "all-complete"
)

// SetProgress is the normalized status of one set after reconciliation.
type SetProgress string

const (
	SetNotStarted SetProgress = "not-started"
	SetStarted    SetProgress = "started"
	SetCompleted  SetProgress = "completed"
)

const (
	// SetCount is the number of sets in one session.
	SetCount = 4
	// StepCount is the number of checklist steps per set.
	StepCount = 11
	// AckStepNumber is the support acknowledgment gate; it is never
	// completed through CompleteStep.
	AckStepNumber = 11
)

// ChecklistStep is one fixed checklist item. Titles are sent verbatim to the
// remote service's complete-step call.
type ChecklistStep struct {
	Number      int
	Title       string
	Description string
	RequiresAck bool
}

// Checklist is the fixed 11-step restart procedure applied to every set.
var Checklist = []ChecklistStep{
	{Number: 1, Title: "CACHE UPDATED AFTER 12:00 A.M.", Description: "Ensure cache is updated after midnight"},
	{Number: 2, Title: "INFORM START OF ACTIVITY TO SUPPORT TEAM", Description: "Notify support team about activity start"},
	{Number: 3, Title: "SETS READY FOR RESTART", Description: "Prepare all server sets for restart"},
	{Number: 4, Title: "ISOLATOR DOWN", Description: "Bring isolator down for maintenance"},
	{Number: 5, Title: "BROKER STOPPED", Description: "Stop all broker services"},
	{Number: 6, Title: "HEARTBEAT & CACHE BROKER STARTED", Description: "Start heartbeat and cache broker services"},
	{Number: 7, Title: "ALL BROKER STARTED", Description: "Start all broker services"},
	{Number: 8, Title: "CACHE HIT & WORKLOAD DONE", Description: "Verify cache hits and complete workload"},
	{Number: 9, Title: "UDP CHANGES (TIMEOUT & URL CHANGES)", Description: "Apply UDP configuration changes"},
	{Number: 10, Title: "LOGS VERIFICATION DONE", Description: "Verify all system logs"},
	{Number: 11, Title: "ISOLATOR UP", Description: "Bring isolator back online", RequiresAck: true},
}

// StepTitle returns the remote service's title for a 1-based step number.
func StepTitle(number int) (string, bool) {
	if number < 1 || number > len(Checklist) {
		return "", false
	}
	return Checklist[number-1].Title, true
}

// SetDefinition is the built-in infrastructure assignment for one set slot.
type SetDefinition struct {
	InfraID   string
	InfraName string
	Servers   string
}

// DefaultSets is the standard slot-to-infrastructure assignment. start-set
// accepts overrides; these are the defaults when none are given.
var DefaultSets = []SetDefinition{
	{
		InfraID:   "SET-1",
		InfraName: "25 Series - Set 1",
		Servers:   "155, 156, 157, 173, 174, 73, 74, 55, 56, 57, 63, 64, 163, 164, 10, 11, 12, 110, 111, 112, 41, 42, 43, 141, 142, 143, 31, 32, 134, 135, 192, 196, 197, 68, 69, 168, 169",
	},
	{
		InfraID:   "SET-2",
		InfraName: "25 Series - Set 2",
		Servers:   "158, 159, 160, 175, 176, 75, 58, 59, 65, 66, 67, 165, 166, 13, 14, 113, 114, 115, 44, 45, 144, 145, 146, 33, 34, 131, 132, 133, 190, 191, 194, 195, 70, 71, 170, 171",
	},
	{
		InfraID:   "SET-3",
		InfraName: "24 Series - Set 3",
		Servers:   "158, 159, 160, 175, 176, 75, 58, 59, 65, 66, 67, 165, 166, 13, 14, 113, 114, 115, 44, 45, 144, 145, 146, 33, 34, 131, 132, 133, 190, 191, 194, 195, 70, 71, 170, 171",
	},
	{
		InfraID:   "SET-4",
		InfraName: "24 Series - Set 4",
		Servers:   "155, 156, 157, 173, 174, 73, 74, 55, 56, 57, 63, 64, 163, 164, 10, 11, 12, 110, 111, 112, 41, 42, 43, 141, 142, 143, 31, 32, 134, 135, 192, 196, 197, 68, 69, 168, 169",
	},
}

// DefaultSet returns the built-in definition for a 0-based set index.
func DefaultSet(index int) (SetDefinition, bool) {
	if index < 0 || index >= len(DefaultSets) {
		return SetDefinition{}, false
	}
	return DefaultSets[index], true
}

// StepState is the local completion record for one checklist step of the
// active set. Timestamps are local; the server's subTasks array remains
// authoritative for how many steps are done.
type StepState struct {
	Done        bool
	CompletedAt *time.Time
}

// SetView is one set after reconciliation against a server status document.
type SetView struct {
	Index       int
	Status      SetProgress
	InfraName   string
	InfraID     string
	SubsetID    string
	EndTime     string
	StepsDone   int
	CurrentStep int
	SupportName string
	SupportID   string
	AckTime     string
}
