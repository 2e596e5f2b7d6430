package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

func TestRejectPasswordFields(t *testing.T) {
	assert.NoError(t, RejectPasswordFields(map[string]any{"name": "x"}))
	err := RejectPasswordFields(map[string]any{"name": "x", "password": "pass1234"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestProfileFromMap(t *testing.T) {
	in, err := ProfileFromMap(map[string]any{"name": "New Name", "email": "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", *in.Name)
	assert.Equal(t, "new@example.com", *in.Email)

	in, err = ProfileFromMap(map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, in.Name)
	assert.Nil(t, in.Email)

	_, err = ProfileFromMap(map[string]any{"name": "New Name", "role": "admin", "active": false})
	ae := apperror.As(err)
	require.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Equal(t, map[string]string{"active": "is not an allowed field", "role": "is not an allowed field"}, ae.Fields)
	assert.Equal(t, "Invalid input data. active is not an allowed field. role is not an allowed field", ae.Message)

	_, err = ProfileFromMap(map[string]any{"name": 42})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = ProfileFromMap(map[string]any{"role": "admin", "passwordConfirm": "x"})
	assert.Equal(t, "This route is not for password updates. Please use /updateMyPassword.", apperror.As(err).Message)
}

func TestUpdateMe(t *testing.T) {
	users := newFakeUsers()
	images := &fakeImages{}
	u := users.add(entity.User{Name: "Sophie", Email: "sophie@example.com", Photo: entity.DefaultPhoto})
	svc := NewUserService(users, images)

	updated, err := svc.UpdateMe(context.Background(), u.ID, ProfileInput{Name: ptr("Sophie Louise"), Email: ptr(" Sophie@Example.com")}, strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "Sophie Louise", updated.Name)
	assert.Equal(t, "sophie@example.com", updated.Email)
	assert.Equal(t, "user-"+u.ID.Hex()+".jpeg", updated.Photo)
	assert.Equal(t, entity.RoleUser, updated.Role)

	_, err = svc.UpdateMe(context.Background(), u.ID, ProfileInput{Email: ptr("not-an-email")}, nil)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestDeleteMeHidesUser(t *testing.T) {
	users := newFakeUsers()
	u := users.add(entity.User{Name: "Max", Email: "max@example.com"})
	svc := NewUserService(users, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeleteMe(ctx, u.ID))
	_, err := svc.Get(ctx, u.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	list, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdminUpdateValidatesRole(t *testing.T) {
	users := newFakeUsers()
	u := users.add(entity.User{Name: "Kate", Email: "kate@example.com"})
	svc := NewUserService(users, nil)

	_, err := svc.Update(context.Background(), u.ID, UserInput{Role: ptr(entity.Role("owner"))})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	updated, err := svc.Update(context.Background(), u.ID, UserInput{Role: ptr(entity.RoleGuide)})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleGuide, updated.Role)
}
