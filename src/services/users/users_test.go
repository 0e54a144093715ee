package users

import (
	"context"
	"errors"
	"testing"

	"staffclock/src/models"
	"staffclock/src/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SetRole(ctx context.Context, uid, role string) error {
	return m.Called(ctx, uid, role).Error(0)
}

func TestEnsureUserAssignsRoleOnFirstLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryUserRepository(), []string{" Boss@Example.com "})

	admin, err := svc.EnsureUser(ctx, models.Identity{UID: "1", Email: "boss@example.com", DisplayName: "Boss"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	staff, err := svc.EnsureUser(ctx, models.Identity{UID: "2", Email: "aina@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, staff.Role)
}

func TestEnsureUserKeepsStoredRole(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, &models.User{UID: "1", Email: "boss@example.com", Role: models.RoleStaff}))

	u, err := NewService(repo, []string{"boss@example.com"}).EnsureUser(ctx, models.Identity{UID: "1", Email: "boss@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, u.Role)
}

func TestEnsureUserFillsEmptyRole(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("FindByUID", ctx, "1").Return(&models.User{UID: "1", Email: "boss@example.com"}, nil)
	repo.On("SetRole", ctx, "1", models.RoleAdmin).Return(nil)

	u, err := NewService(repo, []string{"boss@example.com"}).EnsureUser(ctx, models.Identity{UID: "1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	repo.AssertExpectations(t)
}

func TestEnsureUserStoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("FindByUID", ctx, "1").Return(nil, errors.New("mongo down"))

	_, err := NewService(repo, nil).EnsureUser(ctx, models.Identity{UID: "1"})
	assert.ErrorContains(t, err, "mongo down")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
