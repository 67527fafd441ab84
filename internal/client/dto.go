package client

// StatusDocument is the loosely-typed status payload returned by both
// get_restartStatus and start_restartSet. The subset identifier may appear
// under any of three aliased field names, at the document level or on an
// individual set; resolution precedence lives in internal/restart.
type StatusDocument struct {
	SessionID string      `json:"sessionId,omitempty"`
	SubSetsID string      `json:"subSetsId,omitempty"`
	SubsetID  string      `json:"subsetId,omitempty"`
	SubSetID  string      `json:"subSetId,omitempty"`
	Sets      []SetStatus `json:"sets"`
}

// SetStatus is one set entry as the remote service reports it. endTime
// carries the literal sentinel "Present" while the set is still open.
type SetStatus struct {
	Status      string    `json:"status,omitempty"`
	EndTime     string    `json:"endTime,omitempty"`
	SubSetsID   string    `json:"subSetsId,omitempty"`
	SubsetID    string    `json:"subsetId,omitempty"`
	SubSetID    string    `json:"subSetId,omitempty"`
	InfraName   string    `json:"infraName,omitempty"`
	InfraID     string    `json:"infraId,omitempty"`
	SubTasks    []SubTask `json:"subTasks,omitempty"`
	SupportName string    `json:"supportName,omitempty"`
	SupportID   string    `json:"supportId,omitempty"`
	AckTime     string    `json:"ackTime,omitempty"`
}

// SubTask is one completed checklist step recorded server-side.
type SubTask struct {
	StepTitle     string `json:"stepTitle,omitempty"`
	CompletedTime string `json:"completedTime,omitempty"`
}

type SessionIDResponse struct {
	SessionID string `json:"sessionId"`
}

type StatusRequest struct {
	SessionID string `json:"sessionId"`
}

type StartSetRequest struct {
	InfraID   string `json:"infraId"`
	InfraName string `json:"infraName"`
	SessionID string `json:"sessionId,omitempty"`
	SetNumber int    `json:"setNumber"`
}

type CompleteStepRequest struct {
	StepTitle string `json:"stepTitle"`
	SubSetsID string `json:"subSetsId"`
}

type AcknowledgeSetRequest struct {
	SupportID   string `json:"supportId"`
	SupportName string `json:"supportName"`
	SubSetsID   string `json:"subSetsId"`
}

type AcknowledgeSetResponse struct {
	UpdatedSet *SetStatus `json:"updatedSet,omitempty"`
}
