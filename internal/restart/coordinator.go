package restart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"restartctl/internal/client"
	"restartctl/internal/logging"
)

var (
	ErrRoleNotPermitted  = errors.New("role not permitted for this operation")
	ErrMissingSubsetID   = errors.New("no subset identifier could be resolved")
	ErrSetOrder          = errors.New("sets must start strictly in order")
	ErrRunNotComplete    = errors.New("session is not complete")
	ErrNotInitialized    = errors.New("coordinator is not initialized")
	ErrUnknownStep       = errors.New("unknown checklist step")
	ErrSupportIdentity   = errors.New("support name and id are required")
	ErrNoActiveSet       = errors.New("no set is currently active")
	ErrAckStepNotCurrent = errors.New("acknowledgment step is not current")
)

// RemoteService is the slice of the HTTP client the coordinator consumes.
// *client.Client satisfies it; tests substitute fakes.
type RemoteService interface {
	SetSessionToken(id string)
	IssueSessionID(ctx context.Context) (string, error)
	GetStatus(ctx context.Context, sessionID string) (*client.StatusDocument, error)
	StartSet(ctx context.Context, req client.StartSetRequest) (*client.StatusDocument, error)
	CompleteStep(ctx context.Context, req client.CompleteStepRequest) error
	AcknowledgeSet(ctx context.Context, req client.AcknowledgeSetRequest) (*client.AcknowledgeSetResponse, error)
}

// Coordinator owns the client-side state machine for one restart session.
// Canonical progress lives on the remote service; the coordinator holds a
// reconciled view, a resumption cache, and the single-flight guard that
// serializes mutating calls.
type Coordinator struct {
	api      RemoteService
	store    SessionStore
	log      logging.Logger
	activity *ActivityLog
	role     Role
	now      func() time.Time

	poller *Poller

	mu          sync.Mutex
	state       State
	sessionID   string
	sets        []SetView
	activeSet   int
	currentStep int
	steps       [StepCount]StepState
	inFlight    bool
	mutSeq      uint64
}

// Options configures a Coordinator. Zero values fall back to sane defaults;
// Service and Store are required.
type Options struct {
	Service      RemoteService
	Store        SessionStore
	Role         Role
	Logger       logging.Logger
	PollInterval time.Duration
	Now          func() time.Time
}

func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Service == nil {
		return nil, errors.New("restart: remote service is required")
	}
	if opts.Store == nil {
		return nil, errors.New("restart: session store is required")
	}
	role := opts.Role
	if role == "" {
		role = RoleOperations
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	c := &Coordinator{
		api:         opts.Service,
		store:       opts.Store,
		log:         log,
		activity:    NewActivityLog(DefaultActivityCapacity),
		role:        role,
		now:         now,
		state:       StateUninitialized,
		activeSet:   -1,
		currentStep: 1,
	}
	c.poller = NewPoller(opts.PollInterval, c.silentRefresh, log)
	return c, nil
}

// Role returns the operator class this coordinator acts as.
func (c *Coordinator) Role() Role { return c.role }

// Activity returns the bounded in-memory event log.
func (c *Coordinator) Activity() *ActivityLog { return c.activity }

// Snapshot is an immutable copy of the coordinator's reconciled view, safe
// to render from any goroutine.
type Snapshot struct {
	State       State
	Role        Role
	SessionID   string
	Sets        []SetView
	ActiveSet   int
	CurrentStep int
	Steps       [StepCount]StepState
	Polling     bool
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:       c.state,
		Role:        c.role,
		SessionID:   c.sessionID,
		ActiveSet:   c.activeSet,
		CurrentStep: c.currentStep,
		Steps:       c.steps,
		Polling:     c.poller.Running(),
	}
	snap.Sets = append([]SetView(nil), c.sets...)
	return snap
}

// Initialize resumes a cached session or establishes a fresh one, then
// settles into NoActiveSet, ActiveSet, or AllComplete. A support operator
// resuming a session that is already fully complete discards it and mints a
// new one; the previous run's sets never surface under the new session.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateResuming
	c.mu.Unlock()

	sessionID, cached, err := c.store.SessionID()
	if err != nil {
		return fmt.Errorf("read cached session id: %w", err)
	}
	if !cached {
		sessionID, err = c.issueSession(ctx)
		if err != nil {
			return err
		}
	} else {
		c.log.Debug("resuming cached session", logging.F("session_id", sessionID))
	}
	c.adoptSession(sessionID)

	rec, err := c.fetchStatus(ctx, sessionID)
	if err != nil {
		return err
	}

	if c.role == RoleSupport && rec.AllComplete {
		c.log.Info("cached session already complete, starting fresh",
			logging.F("session_id", sessionID))
		c.activity.Record(ActivitySession, "stale completed session discarded",
			map[string]string{"session_id": sessionID})
		if err := c.discardSession(sessionID); err != nil {
			return err
		}
		sessionID, err = c.issueSession(ctx)
		if err != nil {
			return err
		}
		c.adoptSession(sessionID)
		rec, err = c.fetchStatus(ctx, sessionID)
		if err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.applyLocked(rec)
	c.mu.Unlock()

	c.activity.Record(ActivitySession, "session initialized", map[string]string{
		"session_id": sessionID,
		"role":       string(c.role),
	})
	return nil
}

// StartSet opens the set at the given 0-based index. Sets start strictly in
// order; index must equal the number of sets the server already knows about.
// Infra name and id default to the built-in definitions when empty.
func (c *Coordinator) StartSet(ctx context.Context, index int, infraName, infraID string) error {
	if c.role != RoleOperations {
		c.recordRoleRejection("start-set")
		return ErrRoleNotPermitted
	}

	c.mu.Lock()
	if c.state == StateUninitialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	if c.inFlight {
		c.mu.Unlock()
		c.recordReentrant("start-set")
		return nil
	}
	if index != len(c.sets) {
		c.mu.Unlock()
		return fmt.Errorf("%w: next set is %d, got %d", ErrSetOrder, len(c.sets), index)
	}
	if index >= SetCount {
		c.mu.Unlock()
		return fmt.Errorf("%w: all %d sets already started", ErrSetOrder, SetCount)
	}
	sessionID := c.sessionID
	freshRun := c.state == StateAllComplete
	c.inFlight = true
	c.mutSeq++
	c.mu.Unlock()

	defer c.clearInFlight()

	if def, ok := DefaultSet(index); ok {
		if infraName == "" {
			infraName = def.InfraName
		}
		if infraID == "" {
			infraID = def.InfraID
		}
	}

	req := client.StartSetRequest{
		InfraID:   infraID,
		InfraName: infraName,
		SetNumber: index + 1,
	}
	// A completed run keeps no claim to its old session; the next start
	// lets the server mint a replacement id.
	if !freshRun {
		req.SessionID = sessionID
	}

	doc, err := c.api.StartSet(ctx, req)
	if err != nil {
		c.recordAPIError("start-set", err)
		return err
	}

	if doc.SessionID != "" && doc.SessionID != sessionID {
		sessionID = doc.SessionID
		c.adoptSession(sessionID)
		if err := c.store.SetSessionID(sessionID); err != nil {
			c.log.Warn("persist session id failed", logging.F("error", err))
		}
	}

	subsetID := SubsetIDOfStart(doc, index)
	if subsetID == "" {
		c.recordAPIError("start-set", ErrMissingSubsetID)
		return ErrMissingSubsetID
	}
	if err := c.store.SetSubsetID(sessionID, index, subsetID); err != nil {
		c.log.Warn("cache subset id failed", logging.F("error", err))
	}

	c.mu.Lock()
	c.activeSet = index
	c.currentStep = 1
	c.steps = [StepCount]StepState{}
	c.mu.Unlock()

	c.activity.Record(ActivityStep, "set started", map[string]string{
		"set":        strconv.Itoa(index),
		"infra_name": infraName,
		"subset_id":  subsetID,
	})
	c.log.Info("set started",
		logging.F("set", index),
		logging.F("infra_name", infraName),
		logging.F("subset_id", subsetID))

	return c.reconcileAfterMutation(ctx, sessionID)
}

// CompleteStep completes one checklist step of the active set. The step must
// be the current one; completing any other step is a silent guarded no-op.
// Step 11 is the support acknowledgment gate and never goes through here.
func (c *Coordinator) CompleteStep(ctx context.Context, stepNumber int) error {
	if c.role != RoleOperations {
		c.recordRoleRejection("complete-step")
		return ErrRoleNotPermitted
	}
	title, ok := StepTitle(stepNumber)
	if !ok || stepNumber == AckStepNumber {
		return fmt.Errorf("%w: %d", ErrUnknownStep, stepNumber)
	}

	c.mu.Lock()
	if c.state == StateUninitialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	if c.inFlight {
		c.mu.Unlock()
		c.recordReentrant("complete-step")
		return nil
	}
	if c.activeSet < 0 {
		c.mu.Unlock()
		return ErrNoActiveSet
	}
	if stepNumber != c.currentStep {
		current := c.currentStep
		c.mu.Unlock()
		c.activity.Record(ActivityNoop, "out-of-order step ignored", map[string]string{
			"step":    strconv.Itoa(stepNumber),
			"current": strconv.Itoa(current),
		})
		c.log.Debug("out-of-order step ignored",
			logging.F("step", stepNumber),
			logging.F("current", current))
		return nil
	}
	sessionID := c.sessionID
	index := c.activeSet
	subsetID := c.subsetIDLocked(index)
	c.inFlight = true
	c.mutSeq++
	c.mu.Unlock()

	defer c.clearInFlight()

	if subsetID == "" {
		c.recordAPIError("complete-step", ErrMissingSubsetID)
		return ErrMissingSubsetID
	}

	err := c.api.CompleteStep(ctx, client.CompleteStepRequest{
		StepTitle: title,
		SubSetsID: subsetID,
	})
	if err != nil {
		c.recordAPIError("complete-step", err)
		return err
	}

	completedAt := c.now()
	c.mu.Lock()
	c.steps[stepNumber-1] = StepState{Done: true, CompletedAt: &completedAt}
	c.currentStep = clampStep(stepNumber + 1)
	c.mu.Unlock()

	c.activity.Record(ActivityStep, "step completed", map[string]string{
		"set":  strconv.Itoa(index),
		"step": strconv.Itoa(stepNumber),
	})
	c.log.Info("step completed",
		logging.F("set", index),
		logging.F("step", stepNumber),
		logging.F("title", title))

	return c.reconcileAfterMutation(ctx, sessionID)
}

// AcknowledgeStep11 records the support acknowledgment that closes the
// active set. When all four sets are complete afterwards the session reaches
// AllComplete and cached identifiers are cleared.
func (c *Coordinator) AcknowledgeStep11(ctx context.Context, supportName, supportID string) error {
	if c.role != RoleSupport {
		c.recordRoleRejection("acknowledge")
		return ErrRoleNotPermitted
	}
	if supportName == "" || supportID == "" {
		return ErrSupportIdentity
	}

	c.mu.Lock()
	if c.state == StateUninitialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	if c.inFlight {
		c.mu.Unlock()
		c.recordReentrant("acknowledge")
		return nil
	}
	if c.activeSet < 0 {
		c.mu.Unlock()
		return ErrNoActiveSet
	}
	if c.currentStep != AckStepNumber {
		c.mu.Unlock()
		return fmt.Errorf("%w: current step is %d", ErrAckStepNotCurrent, c.currentStep)
	}
	sessionID := c.sessionID
	index := c.activeSet
	subsetID := c.subsetIDLocked(index)
	c.inFlight = true
	c.mutSeq++
	c.mu.Unlock()

	defer c.clearInFlight()

	if subsetID == "" {
		c.recordAPIError("acknowledge", ErrMissingSubsetID)
		return ErrMissingSubsetID
	}

	_, err := c.api.AcknowledgeSet(ctx, client.AcknowledgeSetRequest{
		SupportID:   supportID,
		SupportName: supportName,
		SubSetsID:   subsetID,
	})
	if err != nil {
		c.recordAPIError("acknowledge", err)
		return err
	}

	c.activity.Record(ActivityAck, "set acknowledged", map[string]string{
		"set":          strconv.Itoa(index),
		"support_name": supportName,
	})
	c.log.Info("set acknowledged",
		logging.F("set", index),
		logging.F("support_name", supportName))

	if err := c.reconcileAfterMutation(ctx, sessionID); err != nil {
		return err
	}

	c.mu.Lock()
	allComplete := c.state == StateAllComplete
	if !allComplete && c.activeSet == index {
		// The acked set is closed even when the status snapshot lags;
		// the next StartSet begins at step 1.
		c.activeSet = -1
		c.currentStep = 1
		c.steps = [StepCount]StepState{}
		c.state = StateNoActiveSet
		c.poller.Stop()
	}
	c.mu.Unlock()

	if allComplete {
		if err := c.store.ClearSubsetIDs(sessionID); err != nil {
			c.log.Warn("clear cached subset ids failed", logging.F("error", err))
		}
		c.activity.Record(ActivitySession, "all sets complete", map[string]string{
			"session_id": sessionID,
		})
	}
	return nil
}

// StartNewSession retires a fully completed run. Cached identifiers and the
// session id are cleared; a fresh session id is minted lazily by the next
// StartSet, not here.
func (c *Coordinator) StartNewSession(ctx context.Context) error {
	if c.role != RoleOperations {
		c.recordRoleRejection("new-session")
		return ErrRoleNotPermitted
	}

	c.mu.Lock()
	if c.state != StateAllComplete {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ErrRunNotComplete, state)
	}
	if c.inFlight {
		c.mu.Unlock()
		c.recordReentrant("new-session")
		return nil
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	if err := c.discardSession(sessionID); err != nil {
		return err
	}

	c.poller.Stop()
	c.mu.Lock()
	c.sessionID = ""
	c.state = StateNoActiveSet
	c.sets = nil
	c.activeSet = -1
	c.currentStep = 1
	c.steps = [StepCount]StepState{}
	c.mutSeq++
	c.mu.Unlock()
	c.api.SetSessionToken("")

	c.activity.Reset()
	c.activity.Record(ActivitySession, "new session prepared", nil)
	c.log.Info("new session prepared", logging.F("previous_session", sessionID))
	return nil
}

// Refresh re-fetches and reconciles server status. It bypasses the
// single-flight guard; reads never mutate server state.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateUninitialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	rec, err := c.fetchStatus(ctx, sessionID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.applyLocked(rec)
	c.mu.Unlock()

	c.activity.Record(ActivityStatus, "status refreshed", map[string]string{
		"complete_sets": strconv.Itoa(rec.CompleteCount),
	})
	return nil
}

// Close stops background polling. The coordinator must not be used after.
func (c *Coordinator) Close() {
	if c == nil {
		return
	}
	c.poller.Stop()
}

// silentRefresh is the poller tick. It suppresses activity entries and
// discards its result when a mutating call has advanced the state since the
// fetch began, so a slow poll can never roll back fresher knowledge.
func (c *Coordinator) silentRefresh(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateUninitialized {
		c.mu.Unlock()
		return
	}
	sessionID := c.sessionID
	seq := c.mutSeq
	c.mu.Unlock()

	rec, err := c.fetchStatus(ctx, sessionID)
	if err != nil {
		c.log.Debug("background status poll failed", logging.F("error", err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mutSeq != seq {
		c.log.Debug("stale poll result discarded",
			logging.F("seq", seq),
			logging.F("current", c.mutSeq))
		return
	}
	c.applyLocked(rec)
}

// reconcileAfterMutation is the fetch that follows every server-confirmed
// mutation so the client view cannot drift from server truth.
func (c *Coordinator) reconcileAfterMutation(ctx context.Context, sessionID string) error {
	rec, err := c.fetchStatus(ctx, sessionID)
	if err != nil {
		c.recordAPIError("status", err)
		return err
	}
	c.mu.Lock()
	c.applyLocked(rec)
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) fetchStatus(ctx context.Context, sessionID string) (Reconciliation, error) {
	doc, err := c.api.GetStatus(ctx, sessionID)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("fetch status: %w", err)
	}
	rec := Reconcile(doc, c.log)
	// Server-reported identifiers refresh the resumption cache.
	for _, set := range rec.Sets {
		if set.SubsetID == "" {
			continue
		}
		if err := c.store.SetSubsetID(sessionID, set.Index, set.SubsetID); err != nil {
			c.log.Warn("cache subset id failed",
				logging.F("set", set.Index),
				logging.F("error", err))
		}
	}
	return rec, nil
}

// applyLocked installs a reconciliation and drives the derived state and the
// poller lifecycle. Caller holds c.mu.
func (c *Coordinator) applyLocked(rec Reconciliation) {
	c.sets = rec.Sets
	c.activeSet = rec.ActiveIndex

	switch {
	case rec.AllComplete:
		c.state = StateAllComplete
		c.currentStep = 1
	case rec.ActiveIndex >= 0:
		c.state = StateActiveSet
		active := rec.Sets[rec.ActiveIndex]
		c.currentStep = active.CurrentStep
		for i := range c.steps {
			if i < active.StepsDone {
				if !c.steps[i].Done {
					c.steps[i] = StepState{Done: true}
				}
			} else {
				c.steps[i] = StepState{}
			}
		}
	default:
		c.state = StateNoActiveSet
		c.currentStep = 1
		c.steps = [StepCount]StepState{}
	}

	if c.state == StateActiveSet {
		if !c.poller.Running() {
			c.poller.Start()
		}
	} else if c.poller.Running() {
		c.poller.Stop()
	}
}

func (c *Coordinator) issueSession(ctx context.Context) (string, error) {
	id, err := c.api.IssueSessionID(ctx)
	if err != nil {
		c.recordAPIError("session", err)
		return "", fmt.Errorf("issue session id: %w", err)
	}
	if err := c.store.SetSessionID(id); err != nil {
		return "", fmt.Errorf("persist session id: %w", err)
	}
	c.log.Info("session id issued", logging.F("session_id", id))
	return id, nil
}

func (c *Coordinator) adoptSession(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
	c.api.SetSessionToken(id)
}

func (c *Coordinator) discardSession(sessionID string) error {
	if err := c.store.ClearSubsetIDs(sessionID); err != nil {
		return fmt.Errorf("clear cached subset ids: %w", err)
	}
	if err := c.store.ClearSessionID(); err != nil {
		return fmt.Errorf("clear cached session id: %w", err)
	}
	return nil
}

// subsetIDLocked resolves the identifier for a set: the reconciled view
// first, then the durable cache as fallback. Caller holds c.mu.
func (c *Coordinator) subsetIDLocked(index int) string {
	if index >= 0 && index < len(c.sets) {
		if id := c.sets[index].SubsetID; id != "" {
			return id
		}
	}
	id, ok, err := c.store.SubsetID(c.sessionID, index)
	if err != nil {
		c.log.Warn("read cached subset id failed",
			logging.F("set", index),
			logging.F("error", err))
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

func (c *Coordinator) clearInFlight() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Coordinator) recordReentrant(op string) {
	c.activity.Record(ActivityNoop, "operation already in flight", map[string]string{
		"operation": op,
	})
	c.log.Debug("operation already in flight, ignored", logging.F("operation", op))
}

func (c *Coordinator) recordRoleRejection(op string) {
	c.activity.Record(ActivityNoop, "operation not permitted for role", map[string]string{
		"operation": op,
		"role":      string(c.role),
	})
	c.log.Debug("operation not permitted for role",
		logging.F("operation", op),
		logging.F("role", c.role))
}

func (c *Coordinator) recordAPIError(op string, err error) {
	payload := map[string]string{
		"operation": op,
		"error":     err.Error(),
	}
	if apiErr := client.AsAPIError(err); apiErr != nil {
		payload["status_code"] = strconv.Itoa(apiErr.StatusCode)
	}
	c.activity.Record(ActivityAPIError, "remote call failed", payload)
	c.log.Error("remote call failed",
		logging.F("operation", op),
		logging.F("error", err))
}
