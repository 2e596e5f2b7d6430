package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/pkg/apifeatures"
)

// activeOnly excludes soft-deleted users. Documents written before the flag
// existed have no active field and count as active.
var activeOnly = bson.M{"active": bson.M{"$ne": false}}

var withoutVersion = bson.M{apifeatures.VersionField: 0}

// updateDoc builds a `$set` + `$inc __v` update from an entity. The id, the
// version and every omitted field stay untouched.
func updateDoc(v any, omit ...string) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	delete(set, "_id")
	delete(set, apifeatures.VersionField)
	for _, k := range omit {
		delete(set, k)
	}
	return bson.M{
		"$set": set,
		"$inc": bson.M{apifeatures.VersionField: 1},
	}, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// userRefs loads the public profile of active users. Email is only included
// when withEmail is set.
func userRefs(ctx context.Context, users *mongo.Collection, ids []primitive.ObjectID, withEmail bool) (map[primitive.ObjectID]*entity.UserRef, error) {
	out := map[primitive.ObjectID]*entity.UserRef{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	proj := bson.M{"name": 1, "photo": 1}
	if withEmail {
		proj["email"] = 1
	}
	filter := bson.M{"_id": bson.M{"$in": ids}, "active": bson.M{"$ne": false}}
	cur, err := users.Find(ctx, filter, options.Find().SetProjection(proj))
	if err != nil {
		return nil, err
	}
	var refs []entity.UserRef
	if err := cur.All(ctx, &refs); err != nil {
		return nil, err
	}
	for i := range refs {
		out[refs[i].ID] = &refs[i]
	}
	return out, nil
}

func tourRefs(ctx context.Context, tours *mongo.Collection, ids []primitive.ObjectID) (map[primitive.ObjectID]*entity.TourRef, error) {
	out := map[primitive.ObjectID]*entity.TourRef{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := tours.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	var refs []entity.TourRef
	if err := cur.All(ctx, &refs); err != nil {
		return nil, err
	}
	for i := range refs {
		out[refs[i].ID] = &refs[i]
	}
	return out, nil
}
