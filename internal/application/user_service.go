package application

import (
	"context"
	"io"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	repo "github.com/oksasatya/tour-booking-api/internal/domain/repository"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/validation"
)

// ProfileInput is what a user may change about themselves.
type ProfileInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UserInput is the admin update. Passwords are never changed through it.
type UserInput struct {
	Name  *string      `json:"name"`
	Email *string      `json:"email"`
	Photo *string      `json:"photo"`
	Role  *entity.Role `json:"role"`
}

// passwordFields are rejected by the profile routes.
var passwordFields = []string{"password", "passwordConfirm", "passwordCurrent"}

// RejectPasswordFields fails when raw carries any password field.
func RejectPasswordFields(raw map[string]any) error {
	for _, f := range passwordFields {
		if _, ok := raw[f]; ok {
			return apperror.Validation(
				"This route is not for password updates. Please use /updateMyPassword.",
				map[string]string{f: "is not allowed here"},
			)
		}
	}
	return nil
}

// ProfileFromMap builds the profile patch from a decoded body. Password
// fields get the dedicated message; any other key outside name and email is
// refused.
func ProfileFromMap(raw map[string]any) (ProfileInput, error) {
	var in ProfileInput
	if err := RejectPasswordFields(raw); err != nil {
		return in, err
	}
	fields := map[string]string{}
	for key, v := range raw {
		var dst **string
		switch key {
		case "name":
			dst = &in.Name
		case "email":
			dst = &in.Email
		default:
			fields[key] = "is not an allowed field"
			continue
		}
		s, ok := v.(string)
		if !ok {
			fields[key] = "must be a string"
			continue
		}
		*dst = &s
	}
	if len(fields) > 0 {
		return ProfileInput{}, apperror.Validation(validation.Message(fields), fields)
	}
	return in, nil
}

type UserService struct {
	Repo   repo.UserRepository
	Images ImageStore
}

func NewUserService(r repo.UserRepository, images ImageStore) *UserService {
	return &UserService{Repo: r, Images: images}
}

func (s *UserService) List(ctx context.Context, params url.Values) ([]entity.User, error) {
	return s.Repo.List(ctx, params)
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	return s.Repo.GetByID(ctx, id)
}

// UpdateMe applies the allow-listed profile fields and an optional photo.
func (s *UserService) UpdateMe(ctx context.Context, id primitive.ObjectID, in ProfileInput, photo io.Reader) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if photo != nil {
		if s.Images == nil {
			return nil, apperror.Validation("Image uploads are not enabled", map[string]string{"photo": "uploads are disabled"})
		}
		name, err := s.Images.SaveUserPhoto(ctx, id.Hex(), photo)
		if err != nil {
			return nil, err
		}
		u.Photo = name
	}
	if err := validation.Struct(u); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteMe deactivates the account. The document stays, hidden from reads.
func (s *UserService) DeleteMe(ctx context.Context, id primitive.ObjectID) error {
	return s.Repo.Deactivate(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, in UserInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Photo != nil {
		u.Photo = *in.Photo
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if err := validation.Struct(u); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.Repo.Delete(ctx, id)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
