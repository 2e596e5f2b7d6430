package mongodb

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/internal/domain/repository"
	"github.com/oksasatya/tour-booking-api/pkg/apifeatures"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

// PasswordChangeSkew backdates passwordChangedAt so a token signed right after
// the change is not rejected.
const PasswordChangeSkew = time.Second

type UserRepository struct {
	users *mongo.Collection
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{users: db.Collection(UsersCollection)}
}

func (r *UserRepository) List(ctx context.Context, params url.Values) ([]entity.User, error) {
	q, err := apifeatures.Apply(activeOnly, params, userSchema)
	if err != nil {
		return nil, err
	}
	cur, err := r.users.Find(ctx, q.Filter, q.FindOptions())
	if err != nil {
		return nil, translate(err, "user")
	}
	out := []entity.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate(err, "user")
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, false)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)}, true)
}

func (r *UserRepository) GetByIDWithPassword(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, true)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.Email = normalizeEmail(u.Email)
	u.Active = true
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Version = 0
	res, err := r.users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("Email is already in use")
		}
		return translate(err, "user")
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Update writes profile fields only; credentials and the active flag have
// their own operations.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.Email = normalizeEmail(u.Email)
	upd, err := updateDoc(u, "password", "passwordChangedAt", "active", "createdAt")
	if err != nil {
		return apperror.Internal("encode user", err)
	}
	return r.updateOne(ctx, u.ID, upd)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	changed := time.Now().Add(-PasswordChangeSkew).UTC()
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"password": hash, "passwordChangedAt": changed},
		"$inc": bson.M{apifeatures.VersionField: 1},
	})
}

// Deactivate soft-deletes the user. Deactivated users disappear from every
// read of this repository.
func (r *UserRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"active": false}})
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "user")
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "user")
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, withPassword bool) (*entity.User, error) {
	filter["active"] = activeOnly["active"]
	proj := bson.M{apifeatures.VersionField: 0}
	if !withPassword {
		proj["password"] = 0
	}
	var u entity.User
	if err := r.users.FindOne(ctx, filter, options.FindOne().SetProjection(proj)).Decode(&u); err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	filter := bson.M{"_id": id, "active": activeOnly["active"]}
	res, err := r.users.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("Email is already in use")
		}
		return translate(err, "user")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "user")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
