package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	usersapp "stayhub/internal/app/handlers/users"
	"stayhub/internal/app/queries"
)

// AdminHandler serves the user management panel. Role checks happen in the
// app handlers.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AdminHandler) ListUsers(c *gin.Context) {
	result, err := queries.Ask[usersapp.ListUsersQuery, []dto.User](c.Request.Context(), h.Queries, usersapp.ListUsersQuery{ActingUser: currentActor(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if result == nil {
		result = []dto.User{}
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) GetUser(c *gin.Context) {
	q := usersapp.GetUserQuery{ActingUser: currentActor(c), UserID: c.Param("id")}
	result, err := queries.Ask[usersapp.GetUserQuery, *dto.User](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) DeleteUser(c *gin.Context) {
	cmd := usersapp.DeleteUserCommand{ActingUser: currentActor(c), UserID: c.Param("id")}
	result, err := commands.Dispatch[usersapp.DeleteUserCommand, *usersapp.DeleteUserResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (h AdminHandler) ChangeRole(c *gin.Context) {
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	cmd := usersapp.ChangeRoleCommand{ActingUser: currentActor(c), UserID: c.Param("id"), Role: req.Role}
	result, err := commands.Dispatch[usersapp.ChangeRoleCommand, *dto.User](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
