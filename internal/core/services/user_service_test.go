package services

import (
	"context"
	"testing"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/adapters/persistence/repositories"
	"microloan/internal/adapters/persistence/testdb"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/pagination"

	"github.com/stretchr/testify/require"
)

func seedUsers(t *testing.T, s *UserService) (admin, borrower *models.User) {
	t.Helper()
	admin = &models.User{Email: "admin@x.io", Role: domain.RoleAdmin.String(), DisplayName: "Admin"}
	borrower = &models.User{Email: "b@x.io", Role: domain.RoleUser.String(), DisplayName: "Bea"}
	require.NoError(t, s.userRepo.Create(context.Background(), admin))
	require.NoError(t, s.userRepo.Create(context.Background(), borrower))
	return admin, borrower
}

func TestUserService_UpdateRole(t *testing.T) {
	s := NewUserService(repositories.NewUserRepository(testdb.New(t)))
	admin, borrower := seedUsers(t, s)
	ctx := context.Background()

	u, err := s.UpdateRole(ctx, borrower.ID, admin.Email, &UpdateRoleInput{Role: "Manager"})
	require.NoError(t, err)
	require.Equal(t, "manager", u.Role)

	_, err = s.UpdateRole(ctx, borrower.ID, admin.Email, &UpdateRoleInput{Role: "superuser"})
	require.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = s.UpdateRole(ctx, admin.ID, admin.Email, &UpdateRoleInput{Role: "user"})
	require.ErrorIs(t, err, domain.ErrCannotChangeOwnRole)

	_, err = s.UpdateRole(ctx, 9999, admin.Email, &UpdateRoleInput{Role: "user"})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_SuspendAndRestore(t *testing.T) {
	s := NewUserService(repositories.NewUserRepository(testdb.New(t)))
	admin, borrower := seedUsers(t, s)
	ctx := context.Background()

	u, err := s.Suspend(ctx, borrower.ID, admin.Email, &SuspendInput{Reason: "fraud", Feedback: "contact support"})
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuspended.String(), u.Role)
	require.Equal(t, "fraud", u.SuspendReason)

	role, err := s.GetRole(ctx, borrower.Email)
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuspended, role)

	u, err = s.UpdateRole(ctx, borrower.ID, admin.Email, &UpdateRoleInput{Role: "user"})
	require.NoError(t, err)
	require.Empty(t, u.SuspendReason)
}

func TestUserService_GetRoleUnknownEmail(t *testing.T) {
	s := NewUserService(repositories.NewUserRepository(testdb.New(t)))

	role, err := s.GetRole(context.Background(), "nobody@x.io")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, role)
}

func TestUserService_DeleteUser(t *testing.T) {
	s := NewUserService(repositories.NewUserRepository(testdb.New(t)))
	admin, borrower := seedUsers(t, s)
	ctx := context.Background()

	require.ErrorIs(t, s.DeleteUser(ctx, admin.ID, admin.Email), domain.ErrCannotDeleteSelf)
	require.NoError(t, s.DeleteUser(ctx, borrower.ID, admin.Email))
	require.ErrorIs(t, s.DeleteUser(ctx, borrower.ID, admin.Email), domain.ErrUserNotFound)

	page, err := s.ListUsers(ctx, pagination.NewParams(1, 10), "")
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Meta.Total)
}

func TestUserService_UpdateProfile(t *testing.T) {
	s := NewUserService(repositories.NewUserRepository(testdb.New(t)))
	_, borrower := seedUsers(t, s)
	ctx := context.Background()

	name := "  Bea Smith "
	u, err := s.UpdateProfile(ctx, borrower.Email, &UpdateProfileInput{DisplayName: &name})
	require.NoError(t, err)
	require.Equal(t, "Bea Smith", u.DisplayName)

	_, err = s.UpdateProfile(ctx, "ghost@x.io", &UpdateProfileInput{DisplayName: &name})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
