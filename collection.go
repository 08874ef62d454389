package mongoguard

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// rawCollection is the slice of *mongo.Collection the typed helpers use.
// Tests substitute a fake built on mongo.NewSingleResultFromDocument and
// mongo.NewCursorFromDocuments.
type rawCollection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter, update any, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
	Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// Compile-time assertion that the driver collection satisfies rawCollection.
var _ rawCollection = (*mongo.Collection)(nil)

// Collection provides typed data operations over one collection, each
// executed through the operation executor's retry/timeout wrapper.
//
// The helpers are thin adapters: they close over the underlying driver call
// and supply an operation name of the form "<Entity>.<verb>" for log
// correlation. They carry no retry logic of their own.
type Collection[T any] struct {
	entity string
	raw    rawCollection
	ex     *Executor
}

// NewCollection creates typed helpers for a collection in the manager's
// default database.
//
// Parameters:
//   - ex: The operation executor to run operations through
//   - entity: Entity name used in operation names, e.g. "Course"
//   - collection: The collection name, e.g. "courses"
//
// Returns:
//   - *Collection[T]: Typed helpers decoding documents into T
func NewCollection[T any](ex *Executor, entity, collection string) *Collection[T] {
	return &Collection[T]{
		entity: entity,
		raw:    ex.manager.Collection(collection),
		ex:     ex,
	}
}

// newCollectionWithRaw wires helpers onto an explicit rawCollection.
// Used by tests.
func newCollectionWithRaw[T any](ex *Executor, entity string, raw rawCollection) *Collection[T] {
	return &Collection[T]{entity: entity, raw: raw, ex: ex}
}

// op builds the operation name for log correlation.
func (c *Collection[T]) op(verb string) string {
	return c.entity + "." + verb
}

// FindOne returns the first document matching filter, decoded into T.
//
// A missing document surfaces mongo.ErrNoDocuments, which the classifier
// treats as terminal — it is returned after a single attempt.
func (c *Collection[T]) FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (*T, error) {
	return Execute(ctx, c.ex, c.op("findOne"), func(ctx context.Context) (*T, error) {
		var doc T
		if err := c.raw.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
			return nil, err
		}

		return &doc, nil
	})
}

// FindByID returns the document whose _id matches id.
//
// A string id is parsed as a hex ObjectID first; an invalid hex string
// fails fast with primitive.ErrInvalidHex (terminal, no retry).
func (c *Collection[T]) FindByID(ctx context.Context, id any) (*T, error) {
	return Execute(ctx, c.ex, c.op("findById"), func(ctx context.Context) (*T, error) {
		if s, ok := id.(string); ok {
			oid, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				return nil, err
			}
			id = oid
		}

		var doc T
		if err := c.raw.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
			return nil, err
		}

		return &doc, nil
	})
}

// Find returns all documents matching filter.
func (c *Collection[T]) Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error) {
	return Execute(ctx, c.ex, c.op("find"), func(ctx context.Context) ([]T, error) {
		cursor, err := c.raw.Find(ctx, filter, opts...)
		if err != nil {
			return nil, err
		}

		var docs []T
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, err
		}

		return docs, nil
	})
}

// Save inserts a new document.
//
// Duplicate key violations are terminal and returned after one attempt.
func (c *Collection[T]) Save(ctx context.Context, doc *T, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return Execute(ctx, c.ex, c.op("save"), func(ctx context.Context) (*mongo.InsertOneResult, error) {
		return c.raw.InsertOne(ctx, doc, opts...)
	})
}

// UpdateOne applies update to the first document matching filter.
func (c *Collection[T]) UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return Execute(ctx, c.ex, c.op("updateOne"), func(ctx context.Context) (*mongo.UpdateResult, error) {
		return c.raw.UpdateOne(ctx, filter, update, opts...)
	})
}

// FindOneAndUpdate atomically applies update to the first document matching
// filter and returns the document (pre- or post-update depending on opts).
func (c *Collection[T]) FindOneAndUpdate(ctx context.Context, filter, update any, opts ...*options.FindOneAndUpdateOptions) (*T, error) {
	return Execute(ctx, c.ex, c.op("findOneAndUpdate"), func(ctx context.Context) (*T, error) {
		var doc T
		if err := c.raw.FindOneAndUpdate(ctx, filter, update, opts...).Decode(&doc); err != nil {
			return nil, err
		}

		return &doc, nil
	})
}

// DeleteOne removes the first document matching filter.
func (c *Collection[T]) DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return Execute(ctx, c.ex, c.op("deleteOne"), func(ctx context.Context) (*mongo.DeleteResult, error) {
		return c.raw.DeleteOne(ctx, filter, opts...)
	})
}

// CountDocuments counts documents matching filter.
func (c *Collection[T]) CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error) {
	return Execute(ctx, c.ex, c.op("countDocuments"), func(ctx context.Context) (int64, error) {
		return c.raw.CountDocuments(ctx, filter, opts...)
	})
}

// Aggregate runs pipeline and returns the raw result documents.
//
// Aggregation results are shaped by the pipeline rather than by T, so they
// are returned as bson.M documents.
func (c *Collection[T]) Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) ([]bson.M, error) {
	return Execute(ctx, c.ex, c.op("aggregate"), func(ctx context.Context) ([]bson.M, error) {
		cursor, err := c.raw.Aggregate(ctx, pipeline, opts...)
		if err != nil {
			return nil, err
		}

		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, err
		}

		return docs, nil
	})
}
