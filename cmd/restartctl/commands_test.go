package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"restartctl/internal/client"
	"restartctl/internal/config"
	"restartctl/internal/restart"
)

type fakeRemote struct {
	statusDoc *client.StatusDocument

	issueCalls int
	startReqs  []client.StartSetRequest
	stepReqs   []client.CompleteStepRequest
	ackReqs    []client.AcknowledgeSetRequest
}

func (f *fakeRemote) SetSessionToken(string) {}

func (f *fakeRemote) IssueSessionID(context.Context) (string, error) {
	f.issueCalls++
	return "S-1", nil
}

func (f *fakeRemote) GetStatus(context.Context, string) (*client.StatusDocument, error) {
	if f.statusDoc == nil {
		return &client.StatusDocument{}, nil
	}
	return f.statusDoc, nil
}

func (f *fakeRemote) StartSet(ctx context.Context, req client.StartSetRequest) (*client.StatusDocument, error) {
	f.startReqs = append(f.startReqs, req)
	f.statusDoc = &client.StatusDocument{
		Sets: []client.SetStatus{{Status: "started", EndTime: "Present", SubSetsID: "SS0", InfraName: req.InfraName}},
	}
	return &client.StatusDocument{SessionID: "S-1", Sets: f.statusDoc.Sets}, nil
}

func (f *fakeRemote) CompleteStep(ctx context.Context, req client.CompleteStepRequest) error {
	f.stepReqs = append(f.stepReqs, req)
	done := len(f.statusDoc.Sets[0].SubTasks) + 1
	f.statusDoc.Sets[0].SubTasks = make([]client.SubTask, done)
	return nil
}

func (f *fakeRemote) AcknowledgeSet(ctx context.Context, req client.AcknowledgeSetRequest) (*client.AcknowledgeSetResponse, error) {
	f.ackReqs = append(f.ackReqs, req)
	return &client.AcknowledgeSetResponse{}, nil
}

func fixedFactory(t *testing.T, remote *fakeRemote, role restart.Role, settings config.Settings) coordinatorFactory {
	t.Helper()
	return func() (*tool, error) {
		coord, err := restart.NewCoordinator(restart.Options{
			Service:      remote,
			Store:        restart.NewMemorySessionStore(),
			Role:         role,
			PollInterval: time.Hour,
		})
		if err != nil {
			return nil, err
		}
		return &tool{
			coord:    coord,
			settings: settings,
			close:    coord.Close,
		}, nil
	}
}

func TestStatusCommandPrintsSessionAndSets(t *testing.T) {
	stdout := &bytes.Buffer{}
	remote := &fakeRemote{statusDoc: &client.StatusDocument{Sets: []client.SetStatus{
		{Status: "started", EndTime: "Present", SubSetsID: "SS1", InfraName: "25 Series - Set 1",
			SubTasks: make([]client.SubTask, 3)},
	}}}
	cmd := NewStatusCommand(stdout, &bytes.Buffer{}, fixedFactory(t, remote, restart.RoleOperations, config.DefaultSettings()))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("status: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "session: S-1") {
		t.Fatalf("missing session line:\n%s", out)
	}
	if !strings.Contains(out, "25 Series - Set 1") || !strings.Contains(out, "4/11") {
		t.Fatalf("missing set progress:\n%s", out)
	}
	if !strings.Contains(out, "current step: 4.") {
		t.Fatalf("missing current step line:\n%s", out)
	}
}

func TestStartSetCommandDefaultsToNextSet(t *testing.T) {
	stdout := &bytes.Buffer{}
	remote := &fakeRemote{}
	cmd := NewStartSetCommand(stdout, &bytes.Buffer{}, fixedFactory(t, remote, restart.RoleOperations, config.DefaultSettings()))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("start-set: %v", err)
	}
	if len(remote.startReqs) != 1 {
		t.Fatalf("startReqs = %d, want 1", len(remote.startReqs))
	}
	req := remote.startReqs[0]
	if req.SetNumber != 1 {
		t.Fatalf("set number = %d, want 1", req.SetNumber)
	}
	if req.InfraName != restart.DefaultSets[0].InfraName {
		t.Fatalf("infra name = %q, want built-in default", req.InfraName)
	}
}

func TestCompleteStepCommandDefaultsToCurrentStep(t *testing.T) {
	stdout := &bytes.Buffer{}
	remote := &fakeRemote{statusDoc: &client.StatusDocument{Sets: []client.SetStatus{
		{Status: "started", EndTime: "Present", SubSetsID: "SS1",
			SubTasks: make([]client.SubTask, 3)},
	}}}
	cmd := NewCompleteStepCommand(stdout, &bytes.Buffer{}, fixedFactory(t, remote, restart.RoleOperations, config.DefaultSettings()))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("complete-step: %v", err)
	}
	if len(remote.stepReqs) != 1 {
		t.Fatalf("stepReqs = %d, want 1", len(remote.stepReqs))
	}
	wantTitle, _ := restart.StepTitle(4)
	if remote.stepReqs[0].StepTitle != wantTitle {
		t.Fatalf("step title = %q, want %q", remote.stepReqs[0].StepTitle, wantTitle)
	}
}

func TestAckCommandUsesConfiguredIdentity(t *testing.T) {
	stdout := &bytes.Buffer{}
	remote := &fakeRemote{statusDoc: &client.StatusDocument{Sets: []client.SetStatus{
		{Status: "started", EndTime: "Present", SubSetsID: "SS1",
			SubTasks: make([]client.SubTask, 10)},
	}}}
	settings := config.DefaultSettings()
	settings.Operator.Name = "Sam"
	settings.Operator.ID = "U7"
	cmd := NewAckCommand(stdout, &bytes.Buffer{}, fixedFactory(t, remote, restart.RoleSupport, settings))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if len(remote.ackReqs) != 1 {
		t.Fatalf("ackReqs = %d, want 1", len(remote.ackReqs))
	}
	req := remote.ackReqs[0]
	if req.SupportName != "Sam" || req.SupportID != "U7" || req.SubSetsID != "SS1" {
		t.Fatalf("unexpected ack request: %+v", req)
	}
}

func TestAckCommandFlagOverridesConfig(t *testing.T) {
	remote := &fakeRemote{statusDoc: &client.StatusDocument{Sets: []client.SetStatus{
		{Status: "started", EndTime: "Present", SubSetsID: "SS1",
			SubTasks: make([]client.SubTask, 10)},
	}}}
	settings := config.DefaultSettings()
	settings.Operator.Name = "Config Name"
	settings.Operator.ID = "CFG"
	cmd := NewAckCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(t, remote, restart.RoleSupport, settings))

	if err := cmd.Run([]string{"--name", "Flag Name", "--id", "FLG"}); err != nil {
		t.Fatalf("ack: %v", err)
	}
	req := remote.ackReqs[0]
	if req.SupportName != "Flag Name" || req.SupportID != "FLG" {
		t.Fatalf("flags should override config: %+v", req)
	}
}

func TestNewSessionCommandRequiresAllComplete(t *testing.T) {
	remote := &fakeRemote{statusDoc: &client.StatusDocument{}}
	cmd := NewNewSessionCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(t, remote, restart.RoleOperations, config.DefaultSettings()))

	if err := cmd.Run(nil); err == nil {
		t.Fatal("new-session should fail when the run is not complete")
	}
}

func TestWatchCommandPassesIdentityToTUI(t *testing.T) {
	remote := &fakeRemote{}
	settings := config.DefaultSettings()
	settings.Operator.Name = "Sam"
	settings.Operator.ID = "U7"

	var gotName, gotID string
	cmd := NewWatchCommand(&bytes.Buffer{}, fixedFactory(t, remote, restart.RoleSupport, settings),
		func(coord *restart.Coordinator, supportName, supportID string) error {
			gotName, gotID = supportName, supportID
			return nil
		})

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if gotName != "Sam" || gotID != "U7" {
		t.Fatalf("identity = %q/%q, want Sam/U7", gotName, gotID)
	}
}
