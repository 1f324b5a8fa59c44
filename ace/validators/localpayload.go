package validators

import (
	"strings"

	"github.com/Nuntissura/Handshake-sub002/ace"
)

// LocalPayload rejects a selected entry whose local_only_payload_ref is not
// rooted under "/encrypted/", or that is marked exportable.
type LocalPayload struct{}

func (LocalPayload) Name() string { return "local_payload" }

func (LocalPayload) ValidatePlan(*ace.QueryPlan) error { return nil }

func (LocalPayload) ValidateTrace(_ *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	for _, s := range trace.Selected {
		if s.LocalOnlyPayloadRef == "" {
			continue
		}
		if !strings.HasPrefix(s.LocalOnlyPayloadRef, "/encrypted/") {
			return ace.NewLocalPayloadViolation("local-only payload ref " + s.LocalOnlyPayloadRef + " is not under /encrypted/")
		}
		if s.Exportable {
			return ace.NewLocalPayloadViolation("local-only payload ref " + s.LocalOnlyPayloadRef + " is marked exportable")
		}
	}
	return nil
}
