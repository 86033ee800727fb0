package users

import (
	"context"
	"strings"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainuser "stayhub/internal/domain/user"
)

const (
	ListUsersKey  = "users.list"
	GetUserKey    = "users.get"
	DeleteUserKey = "users.delete"
	ChangeRoleKey = "users.change_role"
)

func parseID(raw string) (domainuser.ID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", domainuser.ErrInvalidID
	}
	return domainuser.ID(id), nil
}

type ListUsersQuery struct {
	ActingUser *auth.Actor
}

func (ListUsersQuery) Key() string { return ListUsersKey }

type GetUserQuery struct {
	ActingUser *auth.Actor
	UserID     string
}

func (GetUserQuery) Key() string { return GetUserKey }

// Queries serves the admin user views. Password hashes never leave dto.MapUser.
type Queries struct {
	UoWFactory uow.UoWFactory
}

func (h *Queries) List(ctx context.Context, q ListUsersQuery) ([]dto.User, error) {
	if err := auth.RequireAdmin(q.ActingUser); err != nil {
		return nil, err
	}
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}
	all, err := unit.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.MapUsers(all), nil
}

func (h *Queries) Get(ctx context.Context, q GetUserQuery) (*dto.User, error) {
	if err := auth.RequireAdmin(q.ActingUser); err != nil {
		return nil, err
	}
	id, err := parseID(q.UserID)
	if err != nil {
		return nil, err
	}
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}
	u, err := unit.Users().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.MapUser(u)
	return &out, nil
}

type DeleteUserCommand struct {
	ActingUser *auth.Actor
	UserID     string
}

func (DeleteUserCommand) Key() string { return DeleteUserKey }

func (c DeleteUserCommand) Actor() *auth.Actor { return c.ActingUser }

type DeleteUserResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type ChangeRoleCommand struct {
	ActingUser *auth.Actor
	UserID     string
	Role       string
}

func (ChangeRoleCommand) Key() string { return ChangeRoleKey }

func (c ChangeRoleCommand) Actor() *auth.Actor { return c.ActingUser }

type Commands struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *Commands) Delete(ctx context.Context, cmd DeleteUserCommand) (*DeleteUserResult, error) {
	if err := auth.RequireAdmin(cmd.ActingUser); err != nil {
		return nil, err
	}
	id, err := parseID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}
	if err := unit.Users().Delete(ctx, id); err != nil {
		return nil, err
	}
	if release != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
	}
	return &DeleteUserResult{ID: string(id), Message: "user deleted"}, nil
}

func (h *Commands) ChangeRole(ctx context.Context, cmd ChangeRoleCommand) (*dto.User, error) {
	if err := auth.RequireAdmin(cmd.ActingUser); err != nil {
		return nil, err
	}
	id, err := parseID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	role, err := domainuser.ParseRole(cmd.Role)
	if err != nil {
		return nil, err
	}
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}
	u, err := unit.Users().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if err := u.ChangeRole(role, now); err != nil {
		return nil, err
	}
	if err := unit.Users().Save(ctx, u); err != nil {
		return nil, err
	}
	if release != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
	}
	out := dto.MapUser(u)
	return &out, nil
}

// Register binds the admin handlers to the buses.
func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, factory uow.UoWFactory) {
	q := &Queries{UoWFactory: factory}
	c := &Commands{UoWFactory: factory}
	queries.RegisterHandler[ListUsersQuery, []dto.User](queryBus, ListUsersKey, queries.HandlerFunc[ListUsersQuery, []dto.User](q.List))
	queries.RegisterHandler[GetUserQuery, *dto.User](queryBus, GetUserKey, queries.HandlerFunc[GetUserQuery, *dto.User](q.Get))
	commands.RegisterHandler[DeleteUserCommand, *DeleteUserResult](cmdBus, DeleteUserKey, commands.HandlerFunc[DeleteUserCommand, *DeleteUserResult](c.Delete))
	commands.RegisterHandler[ChangeRoleCommand, *dto.User](cmdBus, ChangeRoleKey, commands.HandlerFunc[ChangeRoleCommand, *dto.User](c.ChangeRole))
}
