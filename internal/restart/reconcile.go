package restart

import (
	"strings"

	"restartctl/internal/client"
	"restartctl/internal/logging"
)

// The remote service reports an open set with endTime either missing or set
// to this literal sentinel.
const endTimeSentinel = "Present"

const (
	wireStatusStarted   = "started"
	wireStatusCompleted = "completed"
)

// SubsetIDOfSet resolves the aliased subset identifier on a single set
// entry. Aliases are tried in fixed order: subSetsId, subsetId, subSetId.
// Pure; returns "" when no alias is populated.
func SubsetIDOfSet(set *client.SetStatus) string {
	if set == nil {
		return ""
	}
	for _, candidate := range []string{set.SubSetsID, set.SubsetID, set.SubSetID} {
		if id := strings.TrimSpace(candidate); id != "" {
			return id
		}
	}
	return ""
}

// SubsetIDOfDocument resolves the subset identifier from a whole status
// document. Precedence: document-level aliases, then the last set in list
// order, then the last set that is started and still open.
func SubsetIDOfDocument(doc *client.StatusDocument) string {
	if doc == nil {
		return ""
	}
	for _, candidate := range []string{doc.SubSetsID, doc.SubsetID, doc.SubSetID} {
		if id := strings.TrimSpace(candidate); id != "" {
			return id
		}
	}
	if len(doc.Sets) > 0 {
		if id := SubsetIDOfSet(&doc.Sets[len(doc.Sets)-1]); id != "" {
			return id
		}
	}
	for i := len(doc.Sets) - 1; i >= 0; i-- {
		set := &doc.Sets[i]
		if setOpen(set.Status, set.EndTime) {
			if id := SubsetIDOfSet(set); id != "" {
				return id
			}
		}
	}
	return ""
}

// SubsetIDOfStart resolves the identifier from a start-set response:
// document-level aliases first, then the response's set at the started
// index. Start responses never fall back to other sets.
func SubsetIDOfStart(doc *client.StatusDocument, index int) string {
	if doc == nil {
		return ""
	}
	for _, candidate := range []string{doc.SubSetsID, doc.SubsetID, doc.SubSetID} {
		if id := strings.TrimSpace(candidate); id != "" {
			return id
		}
	}
	if index >= 0 && index < len(doc.Sets) {
		return SubsetIDOfSet(&doc.Sets[index])
	}
	return ""
}

func setComplete(status, endTime string) bool {
	if strings.TrimSpace(status) == wireStatusCompleted {
		return true
	}
	end := strings.TrimSpace(endTime)
	return end != "" && end != endTimeSentinel
}

func setOpen(status, endTime string) bool {
	if strings.TrimSpace(status) != wireStatusStarted {
		return false
	}
	end := strings.TrimSpace(endTime)
	return end == "" || end == endTimeSentinel
}

// Reconciliation is the normalized view of one server status document.
type Reconciliation struct {
	Sets          []SetView
	ActiveIndex   int
	CompleteCount int
	AllComplete   bool
}

// Reconcile normalizes a raw status document. At most one set should be
// open; when the server reports more, the last in list order wins and a
// warning is logged (non-fatal).
func Reconcile(doc *client.StatusDocument, log logging.Logger) Reconciliation {
	if log == nil {
		log = logging.Nop()
	}
	rec := Reconciliation{ActiveIndex: -1}
	if doc == nil {
		return rec
	}

	openCount := 0
	for i := range doc.Sets {
		set := &doc.Sets[i]
		view := SetView{
			Index:       i,
			Status:      SetNotStarted,
			InfraName:   strings.TrimSpace(set.InfraName),
			InfraID:     strings.TrimSpace(set.InfraID),
			SubsetID:    SubsetIDOfSet(set),
			EndTime:     strings.TrimSpace(set.EndTime),
			StepsDone:   len(set.SubTasks),
			SupportName: strings.TrimSpace(set.SupportName),
			SupportID:   strings.TrimSpace(set.SupportID),
			AckTime:     strings.TrimSpace(set.AckTime),
		}
		view.CurrentStep = clampStep(len(set.SubTasks) + 1)
		switch {
		case setComplete(set.Status, set.EndTime):
			view.Status = SetCompleted
			rec.CompleteCount++
		case setOpen(set.Status, set.EndTime):
			view.Status = SetStarted
			openCount++
			rec.ActiveIndex = i
		}
		rec.Sets = append(rec.Sets, view)
	}
	if openCount > 1 {
		log.Warn("status reports multiple open sets, using last",
			logging.F("open_sets", openCount),
			logging.F("active_index", rec.ActiveIndex))
	}
	rec.AllComplete = len(rec.Sets) >= SetCount && rec.CompleteCount >= SetCount
	return rec
}

func clampStep(step int) int {
	if step < 1 {
		return 1
	}
	if step > StepCount {
		return StepCount
	}
	return step
}
