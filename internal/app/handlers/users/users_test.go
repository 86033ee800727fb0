package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	"stayhub/internal/domain/auth"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/storage/memory"
)

var (
	admin  = &auth.Actor{ID: "root", Role: domainuser.RoleAdmin}
	member = &auth.Actor{ID: "u1", Role: domainuser.RoleMember}
)

func setup(t *testing.T) (*commands.InMemoryBus, *queries.InMemoryBus) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Users().Save(ctx, &domainuser.User{ID: "root", Email: "root@example.com", PasswordHash: "x", Role: domainuser.RoleAdmin, CreatedAt: created}))
	require.NoError(t, store.Users().Save(ctx, &domainuser.User{ID: "u1", Email: "u1@example.com", PasswordHash: "x", Role: domainuser.RoleMember, CreatedAt: created.Add(time.Hour)}))

	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	Register(cmdBus, queryBus, memory.NewUnitOfWorkFactory(store))
	return cmdBus, queryBus
}

func TestAdminOnly(t *testing.T) {
	cmdBus, queryBus := setup(t)
	ctx := context.Background()

	_, err := queries.Ask[ListUsersQuery, []dto.User](ctx, queryBus, ListUsersQuery{ActingUser: member})
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = queries.Ask[ListUsersQuery, []dto.User](ctx, queryBus, ListUsersQuery{})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	_, err = commands.Dispatch[DeleteUserCommand, *DeleteUserResult](ctx, cmdBus, DeleteUserCommand{ActingUser: member, UserID: "root"})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestListAndGet(t *testing.T) {
	_, queryBus := setup(t)
	ctx := context.Background()

	all, err := queries.Ask[ListUsersQuery, []dto.User](ctx, queryBus, ListUsersQuery{ActingUser: admin})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "root", all[0].ID)

	u, err := queries.Ask[GetUserQuery, *dto.User](ctx, queryBus, GetUserQuery{ActingUser: admin, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", u.Email)

	_, err = queries.Ask[GetUserQuery, *dto.User](ctx, queryBus, GetUserQuery{ActingUser: admin, UserID: "ghost"})
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestChangeRoleAndDelete(t *testing.T) {
	cmdBus, queryBus := setup(t)
	ctx := context.Background()

	_, err := commands.Dispatch[ChangeRoleCommand, *dto.User](ctx, cmdBus, ChangeRoleCommand{ActingUser: admin, UserID: "u1", Role: "owner"})
	assert.ErrorIs(t, err, domainuser.ErrInvalidRole)

	u, err := commands.Dispatch[ChangeRoleCommand, *dto.User](ctx, cmdBus, ChangeRoleCommand{ActingUser: admin, UserID: "u1", Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)

	_, err = commands.Dispatch[DeleteUserCommand, *DeleteUserResult](ctx, cmdBus, DeleteUserCommand{ActingUser: admin, UserID: "u1"})
	require.NoError(t, err)
	_, err = queries.Ask[GetUserQuery, *dto.User](ctx, queryBus, GetUserQuery{ActingUser: admin, UserID: "u1"})
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}
