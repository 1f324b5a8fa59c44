// Package flightrecorder implements the append-only, schema-validated
// event and diagnostic ledger (§4.4): it has event kinds for
// Capability/ACE/MEX denials and gate decisions (the capabilities, ace and
// mex packages do not append to it themselves), and debug bundles and governance
// exports are deterministically rebuilt purely from what this package
// stores.
package flightrecorder

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventSchemaVersion is the schema_version carried by every Event.
const EventSchemaVersion = "hsk.flight_event@1"

// Actor identifies who or what caused an event.
type Actor string

const (
	ActorUser   Actor = "User"
	ActorSystem Actor = "System"
	ActorEngine Actor = "Engine"
	ActorModel  Actor = "Model"
)

// Level is the event's severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind enumerates the recognized event kinds. Security-sensitive
// kinds (see Sensitive) are validated against an exact permitted key set;
// any other key in their payload is rejected at append time.
type EventKind string

const (
	KindGateDecision           EventKind = "mcp.gate.decision"
	KindDiagnostic             EventKind = "FR-EVT-003"
	KindRuntimeChatValidation  EventKind = "runtime_chat_ans001_validation"
	KindModelSwapRequested     EventKind = "model_swap_requested"
	KindGovMailboxPosted       EventKind = "gov_mailbox_posted"
	KindPromptInjectionDetected EventKind = "ace.prompt_injection_detected"
	KindCapabilityDenied       EventKind = "capability.denied"
	KindPolicyDecision         EventKind = "policy.decision"
)

// Sensitive reports whether kind is one of the security-sensitive kinds
// whose payload schema forbids unknown keys (§4.4).
func (k EventKind) Sensitive() bool {
	switch k {
	case KindRuntimeChatValidation, KindModelSwapRequested, KindGovMailboxPosted,
		KindPromptInjectionDetected, KindPolicyDecision:
		return true
	default:
		return false
	}
}

// Event is one append-only flight recorder row. Events never mutate once
// appended; the Store assigns Seq on append in strictly increasing order
// (Testable Property 9), and assigns a random EventID when none is set.
type Event struct {
	SchemaVersion  string          `json:"schema_version"`
	EventID        uuid.UUID       `json:"event_id"`
	Seq            int64           `json:"seq"`
	TsUTC          time.Time       `json:"ts_utc"`
	SessionID      string          `json:"session_id,omitempty"`
	TaskID         string          `json:"task_id,omitempty"`
	JobID          string          `json:"job_id,omitempty"`
	WorkflowRunID  string          `json:"workflow_run_id,omitempty"`
	TraceID        uuid.UUID       `json:"trace_id"`
	Actor          Actor           `json:"actor"`
	EventKind      EventKind       `json:"event_kind"`
	Source         string          `json:"source"`
	Level          Level           `json:"level"`
	Message        string          `json:"message"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}
