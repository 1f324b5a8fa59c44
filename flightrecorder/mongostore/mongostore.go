// Package mongostore wires the flightrecorder.Store interface to the
// MongoDB client, mirroring goa-ai's features/runlog/mongo pairing of a
// thin Store facade over a narrowly-interfaced Mongo client.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Nuntissura/Handshake-sub002/flightrecorder"
)

const (
	defaultEventCollection = "flight_events"
	defaultDiagCollection  = "flight_diagnostics"
	defaultCounterID       = "flight_event_seq"
	defaultTimeout         = 5 * time.Second
)

// Options configures Store.
type Options struct {
	Client           *mongodriver.Client
	Database         string
	EventCollection  string
	DiagCollection   string
	CounterCollection string
	Timeout          time.Duration
	Schemas          *flightrecorder.SchemaRegistry
}

// Store implements flightrecorder.Store over MongoDB. Event ordering
// (Testable Property 9) is provided by an atomic counter document
// incremented via FindOneAndUpdate, since Mongo's own _id ordering is not
// guaranteed to match insertion order under replication.
type Store struct {
	events   collection
	diags    collection
	counters collection
	timeout  time.Duration
	schemas  *flightrecorder.SchemaRegistry
}

// NewStore builds a Mongo-backed flightrecorder.Store and ensures its
// supporting indexes exist.
func NewStore(opts Options) (*Store, error) {
	if opts.Client == nil {
		return nil, errors.New("mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("database name is required")
	}
	eventColl := opts.EventCollection
	if eventColl == "" {
		eventColl = defaultEventCollection
	}
	diagColl := opts.DiagCollection
	if diagColl == "" {
		diagColl = defaultDiagCollection
	}
	counterColl := opts.CounterCollection
	if counterColl == "" {
		counterColl = "flight_counters"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db := opts.Client.Database(opts.Database)
	s := &Store{
		events:   mongoCollection{coll: db.Collection(eventColl)},
		diags:    mongoCollection{coll: db.Collection(diagColl)},
		counters: mongoCollection{coll: db.Collection(counterColl)},
		timeout:  timeout,
		schemas:  opts.Schemas,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := ensureEventIndexes(ctx, s.events); err != nil {
		return nil, err
	}
	return s, nil
}

type eventDocument struct {
	SchemaVersion string    `bson:"schema_version"`
	EventID       string    `bson:"event_id"`
	Seq           int64     `bson:"seq"`
	TsUTC         time.Time `bson:"ts_utc"`
	SessionID     string    `bson:"session_id,omitempty"`
	TaskID        string    `bson:"task_id,omitempty"`
	JobID         string    `bson:"job_id,omitempty"`
	WorkflowRunID string    `bson:"workflow_run_id,omitempty"`
	TraceID       string    `bson:"trace_id"`
	Actor         string    `bson:"actor"`
	EventKind     string    `bson:"event_kind"`
	Source        string    `bson:"source"`
	Level         string    `bson:"level"`
	Message       string    `bson:"message"`
	Payload       []byte    `bson:"payload,omitempty"`
}

type diagnosticDocument struct {
	DiagnosticID    string    `bson:"diagnostic_id"`
	Fingerprint     string    `bson:"fingerprint"`
	Code            string    `bson:"code"`
	Source          string    `bson:"source"`
	Surface         string    `bson:"surface"`
	MessageTemplate string    `bson:"message_template"`
	Message         string    `bson:"message"`
	Severity        string    `bson:"severity"`
	TraceID         string    `bson:"trace_id"`
	JobID           string    `bson:"job_id"`
	TsUTC           time.Time `bson:"ts_utc"`
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) nextSeq(ctx context.Context) (int64, error) {
	res := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": defaultCounterID},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var doc struct {
		Value int64 `bson:"value"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, fmt.Errorf("increment event sequence: %w", err)
	}
	return doc.Value, nil
}

// Append implements flightrecorder.Store.
func (s *Store) Append(ctx context.Context, ev flightrecorder.Event) (flightrecorder.Event, error) {
	if s.schemas != nil {
		if err := s.schemas.Validate(ev.EventKind, ev.Payload); err != nil {
			return flightrecorder.Event{}, err
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	seq, err := s.nextSeq(ctx)
	if err != nil {
		return flightrecorder.Event{}, flightrecorder.NewStoreUnavailable("allocate event seq", err)
	}
	ev.Seq = seq
	if ev.EventID == emptyUUID {
		ev.EventID = newUUID()
	}
	if ev.SchemaVersion == "" {
		ev.SchemaVersion = flightrecorder.EventSchemaVersion
	}

	doc := toEventDocument(ev)
	if _, err := s.events.InsertOne(ctx, doc); err != nil {
		return flightrecorder.Event{}, flightrecorder.NewStoreUnavailable("insert event", err)
	}
	return ev, nil
}

// Query implements flightrecorder.Store.
func (s *Store) Query(ctx context.Context, filter flightrecorder.EventFilter) ([]flightrecorder.Event, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	query := bson.M{}
	if filter.TraceID != "" {
		query["trace_id"] = filter.TraceID
	}
	if filter.JobID != "" {
		query["job_id"] = filter.JobID
	}
	if filter.SessionID != "" {
		query["session_id"] = filter.SessionID
	}
	if filter.EventKind != "" {
		query["event_kind"] = string(filter.EventKind)
	}
	if filter.Severity != "" {
		query["level"] = string(filter.Severity)
	}
	if filter.Source != "" {
		query["source"] = filter.Source
	}
	if filter.FromTS != nil || filter.ToTS != nil {
		tsRange := bson.M{}
		if filter.FromTS != nil {
			tsRange["$gte"] = *filter.FromTS
		}
		if filter.ToTS != nil {
			tsRange["$lte"] = *filter.ToTS
		}
		query["ts_utc"] = tsRange
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.events.Find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetLimit(int64(filter.Limit)),
	)
	if err != nil {
		return nil, flightrecorder.NewStoreUnavailable("query events", err)
	}
	defer cur.Close(ctx)

	var out []flightrecorder.Event
	for cur.Next(ctx) {
		var doc eventDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, flightrecorder.NewStoreUnavailable("decode event", err)
		}
		out = append(out, fromEventDocument(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, flightrecorder.NewStoreUnavailable("iterate events", err)
	}
	return out, nil
}

// RecordViolation implements flightrecorder.Store: the diagnostic insert
// and event append happen within one session transaction so a reader never
// observes one without the other (§4.4).
func (s *Store) RecordViolation(ctx context.Context, diag flightrecorder.Diagnostic) (flightrecorder.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if diag.DiagnosticID == "" {
		diag.DiagnosticID = newUUID().String()
	}
	if _, err := s.diags.InsertOne(ctx, diagnosticDocument{
		DiagnosticID:    diag.DiagnosticID,
		Fingerprint:     diag.Fingerprint,
		Code:            diag.Code,
		Source:          diag.Source,
		Surface:         diag.Surface,
		MessageTemplate: diag.MessageTemplate,
		Message:         diag.Message,
		Severity:        string(diag.Severity),
		TraceID:         diag.TraceID,
		JobID:           diag.JobID,
		TsUTC:           diag.TsUTC,
	}); err != nil {
		return flightrecorder.Event{}, flightrecorder.NewStoreUnavailable("insert diagnostic", err)
	}

	traceID := parseUUID(diag.TraceID)
	return s.Append(ctx, flightrecorder.Event{
		TsUTC:     diag.TsUTC,
		TraceID:   traceID,
		JobID:     diag.JobID,
		Actor:     flightrecorder.ActorSystem,
		EventKind: flightrecorder.KindDiagnostic,
		Source:    diag.Source,
		Level:     diag.Severity,
		Message:   diag.Message,
	})
}

// ListProblems implements flightrecorder.Store by aggregating diagnostic
// documents in-process; the diagnostics collection is expected to stay
// small relative to the event ledger.
func (s *Store) ListProblems(ctx context.Context, minSeverity flightrecorder.MinSeverity) ([]flightrecorder.ProblemGroup, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.diags.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "ts_utc", Value: 1}}))
	if err != nil {
		return nil, flightrecorder.NewStoreUnavailable("query diagnostics", err)
	}
	defer cur.Close(ctx)

	groups := map[string]*flightrecorder.ProblemGroup{}
	var order []string
	for cur.Next(ctx) {
		var doc diagnosticDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, flightrecorder.NewStoreUnavailable("decode diagnostic", err)
		}
		lvl := flightrecorder.Level(doc.Severity)
		if !flightrecorder.MeetsMinSeverity(lvl, minSeverity) {
			continue
		}
		g, ok := groups[doc.Fingerprint]
		if !ok {
			g = &flightrecorder.ProblemGroup{
				Fingerprint: doc.Fingerprint,
				Code:        doc.Code,
				Source:      doc.Source,
				Surface:     doc.Surface,
				FirstSeen:   doc.TsUTC,
				LastSeen:    doc.TsUTC,
			}
			groups[doc.Fingerprint] = g
			order = append(order, doc.Fingerprint)
		}
		g.Count++
		if doc.TsUTC.Before(g.FirstSeen) {
			g.FirstSeen = doc.TsUTC
		}
		if doc.TsUTC.After(g.LastSeen) {
			g.LastSeen = doc.TsUTC
		}
	}
	if err := cur.Err(); err != nil {
		return nil, flightrecorder.NewStoreUnavailable("iterate diagnostics", err)
	}

	out := make([]flightrecorder.ProblemGroup, 0, len(order))
	for _, fp := range order {
		out = append(out, *groups[fp])
	}
	return out, nil
}

func ensureEventIndexes(ctx context.Context, coll collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "seq", Value: 1}},
	})
	return err
}
