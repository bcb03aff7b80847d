package forms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/server/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const Collection = "formentries"

// MongoRepository stores one document per user with steps as an embedded
// document. Merges are $set updates on "steps.<n>.<field>" paths.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection), now: time.Now}
}

// EnsureIndexes creates the unique userId index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}

func (r *MongoRepository) insertDefaults(userID string, now time.Time, withSteps bool) bson.D {
	d := bson.D{
		{Key: "_id", Value: uuid.NewString()},
		{Key: "userId", Value: userID},
		{Key: "completed", Value: false},
		{Key: "completedAt", Value: nil},
		{Key: "createdAt", Value: now},
	}
	if withSteps {
		d = append(d, bson.E{Key: "steps", Value: bson.D{}}, bson.E{Key: "updatedAt", Value: now})
	}
	return d
}

func (r *MongoRepository) GetOrCreate(ctx context.Context, userID string) (*models.FormEntry, error) {
	update := bson.D{{Key: "$setOnInsert", Value: r.insertDefaults(userID, r.now(), true)}}
	return r.findOneAndUpdate(ctx, userID, update, true)
}

func (r *MongoRepository) Find(ctx context.Context, userID string) (*models.FormEntry, error) {
	var doc bson.M
	if err := r.coll.FindOne(ctx, bson.D{{Key: "userId", Value: userID}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return fromDocument(doc), nil
}

func (r *MongoRepository) MergeStep(ctx context.Context, userID, key string, patch models.StepData) (models.StepData, error) {
	if len(patch) == 0 {
		e, err := r.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}
		return e.Step(key), nil
	}

	now := r.now()
	set := bson.D{{Key: "updatedAt", Value: now}}
	for field, v := range patch {
		set = append(set, bson.E{Key: "steps." + key + "." + field, Value: v})
	}
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: r.insertDefaults(userID, now, false)},
	}

	e, err := r.findOneAndUpdate(ctx, userID, update, true)
	if err != nil {
		return nil, err
	}
	return e.Step(key), nil
}

func (r *MongoRepository) MarkCompleted(ctx context.Context, userID string, at time.Time) (*models.FormEntry, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "completed", Value: true},
		{Key: "completedAt", Value: at},
		{Key: "updatedAt", Value: at},
	}}}
	return r.findOneAndUpdate(ctx, userID, update, false)
}

func (r *MongoRepository) findOneAndUpdate(ctx context.Context, userID string, update bson.D, upsert bool) (*models.FormEntry, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)

	var doc bson.M
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "userId", Value: userID}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return fromDocument(doc), nil
}

// fromDocument converts a raw document into a FormEntry, turning embedded
// bson types into the plain maps and slices the JSON layer expects.
func fromDocument(doc bson.M) *models.FormEntry {
	e := &models.FormEntry{Steps: map[string]models.StepData{}}
	e.ID, _ = doc["_id"].(string)
	e.UserID, _ = doc["userId"].(string)
	e.Completed, _ = doc["completed"].(bool)
	e.CreatedAt = asTime(doc["createdAt"])
	e.UpdatedAt = asTime(doc["updatedAt"])
	if doc["completedAt"] != nil {
		t := asTime(doc["completedAt"])
		e.CompletedAt = &t
	}

	if steps, ok := normalize(doc["steps"]).(map[string]any); ok {
		for k, v := range steps {
			if obj, ok := v.(map[string]any); ok {
				e.Steps[k] = obj
			}
		}
	}
	return e
}

func normalize(v any) any {
	switch t := v.(type) {
	case bson.D:
		m := make(map[string]any, len(t))
		for _, el := range t {
			m[el.Key] = normalize(el.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(t))
		for k, el := range t {
			m[k] = normalize(el)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, el := range t {
			m[k] = normalize(el)
		}
		return m
	case bson.A:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = normalize(el)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = normalize(el)
		}
		return out
	default:
		return v
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	default:
		return time.Time{}
	}
}
