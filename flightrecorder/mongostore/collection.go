package mongostore

import (
	"context"

	"github.com/google/uuid"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Nuntissura/Handshake-sub002/flightrecorder"
)

var emptyUUID uuid.UUID

func newUUID() uuid.UUID { return uuid.New() }

func parseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func toEventDocument(ev flightrecorder.Event) eventDocument {
	return eventDocument{
		SchemaVersion: ev.SchemaVersion,
		EventID:       ev.EventID.String(),
		Seq:           ev.Seq,
		TsUTC:         ev.TsUTC,
		SessionID:     ev.SessionID,
		TaskID:        ev.TaskID,
		JobID:         ev.JobID,
		WorkflowRunID: ev.WorkflowRunID,
		TraceID:       ev.TraceID.String(),
		Actor:         string(ev.Actor),
		EventKind:     string(ev.EventKind),
		Source:        ev.Source,
		Level:         string(ev.Level),
		Message:       ev.Message,
		Payload:       append([]byte(nil), ev.Payload...),
	}
}

func fromEventDocument(doc eventDocument) flightrecorder.Event {
	return flightrecorder.Event{
		SchemaVersion: doc.SchemaVersion,
		EventID:       parseUUID(doc.EventID),
		Seq:           doc.Seq,
		TsUTC:         doc.TsUTC,
		SessionID:     doc.SessionID,
		TaskID:        doc.TaskID,
		JobID:         doc.JobID,
		WorkflowRunID: doc.WorkflowRunID,
		TraceID:       parseUUID(doc.TraceID),
		Actor:         flightrecorder.Actor(doc.Actor),
		EventKind:     flightrecorder.EventKind(doc.EventKind),
		Source:        doc.Source,
		Level:         flightrecorder.Level(doc.Level),
		Message:       doc.Message,
		Payload:       append([]byte(nil), doc.Payload...),
	}
}

// collection is the narrow surface Store needs from *mongo.Collection,
// mirroring goa-ai's runlog/mongo/clients/mongo collection interface so
// tests can fake it without a live MongoDB.
type collection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongodriver.InsertOneResult, error)
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error)
	FindOneAndUpdate(ctx context.Context, filter, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) singleResult
	Indexes() indexView
}

type indexView interface {
	CreateOne(ctx context.Context, model mongodriver.IndexModel, opts ...options.Lister[options.CreateIndexesOptions]) (string, error)
}

type cursor interface {
	Next(ctx context.Context) bool
	Decode(val any) error
	Err() error
	Close(ctx context.Context) error
}

type singleResult interface {
	Decode(val any) error
}

type mongoCollection struct {
	coll *mongodriver.Collection
}

func (c mongoCollection) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongodriver.InsertOneResult, error) {
	return c.coll.InsertOne(ctx, document, opts...)
}

func (c mongoCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error) {
	cur, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return mongoCursor{cur: cur}, nil
}

func (c mongoCollection) FindOneAndUpdate(ctx context.Context, filter, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) singleResult {
	return c.coll.FindOneAndUpdate(ctx, filter, update, opts...)
}

func (c mongoCollection) Indexes() indexView {
	return mongoIndexView{view: c.coll.Indexes()}
}

type mongoCursor struct {
	cur *mongodriver.Cursor
}

func (c mongoCursor) Next(ctx context.Context) bool  { return c.cur.Next(ctx) }
func (c mongoCursor) Decode(val any) error            { return c.cur.Decode(val) }
func (c mongoCursor) Err() error                      { return c.cur.Err() }
func (c mongoCursor) Close(ctx context.Context) error { return c.cur.Close(ctx) }

type mongoIndexView struct {
	view mongodriver.IndexView
}

func (v mongoIndexView) CreateOne(ctx context.Context, model mongodriver.IndexModel, opts ...options.Lister[options.CreateIndexesOptions]) (string, error) {
	return v.view.CreateOne(ctx, model, opts...)
}
