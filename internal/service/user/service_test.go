package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stickspnw/sticks-work-center/internal/entity"
	userrepo "github.com/stickspnw/sticks-work-center/internal/repository/user"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

type storeStub struct {
	ListFunc            func(ctx context.Context) ([]*entity.User, error)
	GetByIDFunc         func(ctx context.Context, id string) (*entity.User, error)
	CreateFunc          func(ctx context.Context, u *entity.User) error
	SetStatusFunc       func(ctx context.Context, id string, status entity.UserStatus) error
	SetRoleFunc         func(ctx context.Context, id string, role entity.Role) error
	SetPasswordHashFunc func(ctx context.Context, id, hash string) error
}

func (s *storeStub) List(ctx context.Context) ([]*entity.User, error) {
	return s.ListFunc(ctx)
}

func (s *storeStub) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.GetByIDFunc(ctx, id)
}

func (s *storeStub) Create(ctx context.Context, u *entity.User) error {
	return s.CreateFunc(ctx, u)
}

func (s *storeStub) SetStatus(ctx context.Context, id string, status entity.UserStatus) error {
	return s.SetStatusFunc(ctx, id, status)
}

func (s *storeStub) SetRole(ctx context.Context, id string, role entity.Role) error {
	return s.SetRoleFunc(ctx, id, role)
}

func (s *storeStub) SetPasswordHash(ctx context.Context, id, hash string) error {
	return s.SetPasswordHashFunc(ctx, id, hash)
}

func newTestService(store *storeStub) *Service {
	return &Service{
		store:      store,
		bcryptCost: bcrypt.MinCost,
		logger:     zap.NewNop(),
	}
}

func existingUser(id string) *entity.User {
	return &entity.User{
		ID:       id,
		Username: "kaden.standard",
		Name:     "Kaden",
		Role:     entity.RoleStandard,
		Status:   entity.UserStatusActive,
	}
}

func TestCreateHashesPasswordAndNormalizesUsername(t *testing.T) {
	var created *entity.User
	store := &storeStub{
		CreateFunc: func(ctx context.Context, u *entity.User) error {
			created = u
			return nil
		},
	}
	svc := newTestService(store)

	u, err := svc.Create(context.Background(), CreateInput{
		Username: "  Riley.Admin ",
		Password: "hunter2",
		Name:     "Riley",
		Role:     entity.RoleAdmin,
	}, "actor-1")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "riley.admin", u.Username)
	assert.Equal(t, entity.UserStatusActive, u.Status)
	assert.NotEqual(t, "hunter2", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2")))
}

func TestCreateRejectsShortInputs(t *testing.T) {
	svc := newTestService(&storeStub{})

	_, err := svc.Create(context.Background(), CreateInput{Username: "ab", Password: "hunter2", Name: "A", Role: entity.RoleStandard}, "actor-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())

	_, err = svc.Create(context.Background(), CreateInput{Username: "riley", Password: "abc", Name: "Riley", Role: entity.RoleStandard}, "actor-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())

	_, err = svc.Create(context.Background(), CreateInput{Username: "riley", Password: "hunter2", Name: "Riley", Role: entity.Role("SUPERUSER")}, "actor-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestCreateDuplicateUsernameIsConflict(t *testing.T) {
	store := &storeStub{
		CreateFunc: func(ctx context.Context, u *entity.User) error {
			return userrepo.ErrUsernameTaken
		},
	}
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), CreateInput{Username: "riley", Password: "hunter2", Name: "Riley", Role: entity.RoleStandard}, "actor-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestSetStatusCannotDisableSelf(t *testing.T) {
	svc := newTestService(&storeStub{})

	_, err := svc.SetStatus(context.Background(), "actor-1", entity.UserStatusDisabled, "JW", "actor-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestSetStatusDisablesOtherAccount(t *testing.T) {
	var gotStatus entity.UserStatus
	store := &storeStub{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.User, error) {
			return existingUser(id), nil
		},
		SetStatusFunc: func(ctx context.Context, id string, status entity.UserStatus) error {
			gotStatus = status
			return nil
		},
	}
	svc := newTestService(store)

	u, err := svc.SetStatus(context.Background(), "user-2", entity.UserStatusDisabled, "jw", "actor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusDisabled, gotStatus)
	assert.Equal(t, entity.UserStatusDisabled, u.Status)
}

func TestSetStatusRequiresInitials(t *testing.T) {
	svc := newTestService(&storeStub{})

	_, err := svc.SetStatus(context.Background(), "user-2", entity.UserStatusDisabled, "", "actor-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestSetRoleCannotChangeOwnRole(t *testing.T) {
	svc := newTestService(&storeStub{})

	_, err := svc.SetRole(context.Background(), "actor-1", entity.RoleReadOnly, "JW", "actor-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestSetRoleUpdatesOtherAccount(t *testing.T) {
	var gotRole entity.Role
	store := &storeStub{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.User, error) {
			return existingUser(id), nil
		},
		SetRoleFunc: func(ctx context.Context, id string, role entity.Role) error {
			gotRole = role
			return nil
		},
	}
	svc := newTestService(store)

	u, err := svc.SetRole(context.Background(), "user-2", entity.RoleAdmin, "KT", "actor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, gotRole)
	assert.Equal(t, entity.RoleAdmin, u.Role)
}

func TestResetPasswordStoresNewHash(t *testing.T) {
	var gotHash string
	store := &storeStub{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.User, error) {
			return existingUser(id), nil
		},
		SetPasswordHashFunc: func(ctx context.Context, id, hash string) error {
			gotHash = hash
			return nil
		},
	}
	svc := newTestService(store)

	err := svc.ResetPassword(context.Background(), "user-2", "newpass", "actor-1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("newpass")))
}

func TestDeleteIsLogicalDisable(t *testing.T) {
	var gotStatus entity.UserStatus
	store := &storeStub{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.User, error) {
			return existingUser(id), nil
		},
		SetStatusFunc: func(ctx context.Context, id string, status entity.UserStatus) error {
			gotStatus = status
			return nil
		},
	}
	svc := newTestService(store)

	err := svc.Delete(context.Background(), "user-2", "JW", "actor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusDisabled, gotStatus)
}

func TestDeleteCannotTargetSelf(t *testing.T) {
	svc := newTestService(&storeStub{})

	err := svc.Delete(context.Background(), "actor-1", "JW", "actor-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestDeleteUnknownUserIsNotFound(t *testing.T) {
	store := &storeStub{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.User, error) {
			return nil, userrepo.ErrNotFound
		},
	}
	svc := newTestService(store)

	err := svc.Delete(context.Background(), "missing", "JW", "actor-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}
