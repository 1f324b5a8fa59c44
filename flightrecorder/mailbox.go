package flightrecorder

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MailboxCapability is the capability ID for posts to the role mailbox
// (§[EXPANSION] Supplemented Features, item 2). Mailbox.Post does not check
// it; nothing in this package consults it.
const MailboxCapability = "fs.write:gov_mailbox"

// MailboxMessage is one append-only, role-addressed message under
// ROLE_MAILBOX/.
type MailboxMessage struct {
	MessageID uuid.UUID `json:"message_id"`
	ToRole    string    `json:"to_role"`
	FromRole  string    `json:"from_role"`
	TsUTC     time.Time `json:"ts_utc"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
}

// Mailbox posts role-addressed messages and emits a gov_mailbox_posted
// flight recorder event for each, via the same Store every other
// governed operation appends to.
type Mailbox struct {
	Store   Store
	NewUUID func() uuid.UUID
}

// NewMailbox builds a Mailbox backed by store.
func NewMailbox(store Store) Mailbox {
	return Mailbox{Store: store, NewUUID: uuid.New}
}

// Post records a gov_mailbox_posted event for msg carrying exactly the
// permitted key set {to_role, from_role, subject} in its payload —
// gov_mailbox_* is one of the security-sensitive kinds (§4.4). That event
// is the only thing stored: msg's Body and MessageID are not persisted.
func (m Mailbox) Post(ctx context.Context, msg MailboxMessage) (Event, error) {
	newUUID := m.NewUUID
	if newUUID == nil {
		newUUID = uuid.New
	}
	if msg.MessageID == uuid.Nil {
		msg.MessageID = newUUID()
	}

	payload, err := json.Marshal(struct {
		ToRole   string `json:"to_role"`
		FromRole string `json:"from_role"`
		Subject  string `json:"subject"`
	}{ToRole: msg.ToRole, FromRole: msg.FromRole, Subject: msg.Subject})
	if err != nil {
		return Event{}, NewSchemaViolation("marshal gov_mailbox_posted payload", err)
	}

	ev := Event{
		TsUTC:     msg.TsUTC,
		Actor:     ActorUser,
		EventKind: KindGovMailboxPosted,
		Source:    "gov_mailbox",
		Level:     LevelInfo,
		Message:   "posted to " + msg.ToRole,
		Payload:   payload,
	}
	return m.Store.Append(ctx, ev)
}
