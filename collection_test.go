package mongoguard

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// course is the entity used by the collection helper tests.
type course struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Title    string             `bson:"title"`
	Category string             `bson:"category"`
}

// fakeRaw is a scriptable rawCollection backed by the driver's test
// constructors, so decoding goes through the real BSON machinery.
type fakeRaw struct {
	mu      sync.Mutex
	calls   int
	filters []any

	findOneDoc  any
	findOneErr  error
	findDocs    []any
	findErr     error
	insertedID  any
	insertErr   error
	updateRes   *mongo.UpdateResult
	deleteRes   *mongo.DeleteResult
	countRes    int64
	countErr    error
	pipelineRes []any
}

func (f *fakeRaw) recordCall(filter any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.filters = append(f.filters, filter)
}

func (f *fakeRaw) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func (f *fakeRaw) lastFilter() any {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.filters) == 0 {
		return nil
	}

	return f.filters[len(f.filters)-1]
}

// singleResult builds a SingleResult from the scripted document and error.
// The driver constructor rejects a nil document, so errors ride along with a
// placeholder.
func (f *fakeRaw) singleResult() *mongo.SingleResult {
	doc := f.findOneDoc
	if doc == nil {
		doc = bson.D{}
	}

	return mongo.NewSingleResultFromDocument(doc, f.findOneErr, nil)
}

func (f *fakeRaw) FindOne(_ context.Context, filter any, _ ...*options.FindOneOptions) *mongo.SingleResult {
	f.recordCall(filter)

	return f.singleResult()
}

func (f *fakeRaw) Find(_ context.Context, filter any, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	f.recordCall(filter)
	if f.findErr != nil {
		return nil, f.findErr
	}

	return mongo.NewCursorFromDocuments(f.findDocs, nil, nil)
}

func (f *fakeRaw) InsertOne(_ context.Context, doc any, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.recordCall(doc)
	if f.insertErr != nil {
		return nil, f.insertErr
	}

	return &mongo.InsertOneResult{InsertedID: f.insertedID}, nil
}

func (f *fakeRaw) UpdateOne(_ context.Context, filter, _ any, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.recordCall(filter)

	return f.updateRes, nil
}

func (f *fakeRaw) FindOneAndUpdate(_ context.Context, filter, _ any, _ ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	f.recordCall(filter)

	return f.singleResult()
}

func (f *fakeRaw) DeleteOne(_ context.Context, filter any, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.recordCall(filter)

	return f.deleteRes, nil
}

func (f *fakeRaw) CountDocuments(_ context.Context, filter any, _ ...*options.CountOptions) (int64, error) {
	f.recordCall(filter)

	return f.countRes, f.countErr
}

func (f *fakeRaw) Aggregate(_ context.Context, pipeline any, _ ...*options.AggregateOptions) (*mongo.Cursor, error) {
	f.recordCall(pipeline)

	return mongo.NewCursorFromDocuments(f.pipelineRes, nil, nil)
}

// newTestCollection wires typed helpers onto a fakeRaw over a connected
// manager.
func newTestCollection(t *testing.T, raw *fakeRaw) *Collection[course] {
	t.Helper()

	ex, _, _ := newConnectedExecutor(t)

	return newCollectionWithRaw[course](ex, "Course", raw)
}

func TestCollection_FindOne(t *testing.T) {
	raw := &fakeRaw{findOneDoc: course{Title: "Intro to Go", Category: "programming"}}
	col := newTestCollection(t, raw)

	got, err := col.FindOne(context.Background(), bson.M{"category": "programming"})

	require.NoError(t, err)
	assert.Equal(t, "Intro to Go", got.Title)
	assert.Equal(t, 1, raw.callCount())
}

func TestCollection_FindOne_NotFoundIsTerminal(t *testing.T) {
	raw := &fakeRaw{findOneErr: mongo.ErrNoDocuments}
	col := newTestCollection(t, raw)

	_, err := col.FindOne(context.Background(), bson.M{"title": "missing"})

	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
	assert.Equal(t, 1, raw.callCount(), "not-found must not be retried")
}

func TestCollection_FindByID_StringHex(t *testing.T) {
	oid := primitive.NewObjectID()
	raw := &fakeRaw{findOneDoc: course{ID: oid, Title: "Intro to Go"}}
	col := newTestCollection(t, raw)

	got, err := col.FindByID(context.Background(), oid.Hex())

	require.NoError(t, err)
	assert.Equal(t, oid, got.ID)

	// The string id is parsed into an ObjectID before hitting the driver.
	filter, ok := raw.lastFilter().(bson.M)
	require.True(t, ok)
	assert.Equal(t, oid, filter["_id"])
}

func TestCollection_FindByID_InvalidHexIsTerminal(t *testing.T) {
	raw := &fakeRaw{}
	col := newTestCollection(t, raw)

	_, err := col.FindByID(context.Background(), "not-a-hex-id")

	assert.ErrorIs(t, err, primitive.ErrInvalidHex)
	assert.Equal(t, 0, raw.callCount(), "invalid ids fail before any driver call")
}

func TestCollection_FindByID_ObjectIDPassthrough(t *testing.T) {
	oid := primitive.NewObjectID()
	raw := &fakeRaw{findOneDoc: course{ID: oid}}
	col := newTestCollection(t, raw)

	got, err := col.FindByID(context.Background(), oid)

	require.NoError(t, err)
	assert.Equal(t, oid, got.ID)
}

func TestCollection_Find(t *testing.T) {
	raw := &fakeRaw{findDocs: []any{
		course{Title: "Intro to Go"},
		course{Title: "Advanced Go"},
	}}
	col := newTestCollection(t, raw)

	got, err := col.Find(context.Background(), bson.M{"category": "programming"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Intro to Go", got[0].Title)
	assert.Equal(t, "Advanced Go", got[1].Title)
}

func TestCollection_Find_Empty(t *testing.T) {
	raw := &fakeRaw{}
	col := newTestCollection(t, raw)

	got, err := col.Find(context.Background(), bson.M{"category": "none"})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollection_Save(t *testing.T) {
	oid := primitive.NewObjectID()
	raw := &fakeRaw{insertedID: oid}
	col := newTestCollection(t, raw)

	res, err := col.Save(context.Background(), &course{Title: "Intro to Go"})

	require.NoError(t, err)
	assert.Equal(t, oid, res.InsertedID)
}

func TestCollection_Save_DuplicateKeyIsTerminal(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	raw := &fakeRaw{insertErr: dup}
	col := newTestCollection(t, raw)

	_, err := col.Save(context.Background(), &course{Title: "Intro to Go"})

	require.Error(t, err)
	assert.True(t, mongo.IsDuplicateKeyError(err))
	assert.Equal(t, 1, raw.callCount(), "duplicate keys must not be retried")
}

func TestCollection_UpdateOne(t *testing.T) {
	raw := &fakeRaw{updateRes: &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}}
	col := newTestCollection(t, raw)

	res, err := col.UpdateOne(context.Background(), bson.M{"title": "Intro to Go"}, bson.M{"$set": bson.M{"category": "golang"}})

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)
}

func TestCollection_FindOneAndUpdate(t *testing.T) {
	raw := &fakeRaw{findOneDoc: course{Title: "Intro to Go", Category: "golang"}}
	col := newTestCollection(t, raw)

	got, err := col.FindOneAndUpdate(context.Background(),
		bson.M{"title": "Intro to Go"},
		bson.M{"$set": bson.M{"category": "golang"}},
	)

	require.NoError(t, err)
	assert.Equal(t, "golang", got.Category)
}

func TestCollection_DeleteOne(t *testing.T) {
	raw := &fakeRaw{deleteRes: &mongo.DeleteResult{DeletedCount: 1}}
	col := newTestCollection(t, raw)

	res, err := col.DeleteOne(context.Background(), bson.M{"title": "Intro to Go"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)
}

func TestCollection_CountDocuments(t *testing.T) {
	raw := &fakeRaw{countRes: 12}
	col := newTestCollection(t, raw)

	count, err := col.CountDocuments(context.Background(), bson.M{"category": "programming"})

	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
}

func TestCollection_Aggregate(t *testing.T) {
	raw := &fakeRaw{pipelineRes: []any{
		bson.M{"_id": "programming", "count": int32(12)},
		bson.M{"_id": "design", "count": int32(3)},
	}}
	col := newTestCollection(t, raw)

	docs, err := col.Aggregate(context.Background(), mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	})

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "programming", docs[0]["_id"])
}

func TestCollection_OperationNames(t *testing.T) {
	col := &Collection[course]{entity: "Course"}

	assert.Equal(t, "Course.findOne", col.op("findOne"))
	assert.Equal(t, "Course.findById", col.op("findById"))
	assert.Equal(t, "Course.aggregate", col.op("aggregate"))
}
