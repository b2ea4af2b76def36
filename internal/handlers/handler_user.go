package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/internal/middleware"
	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests related to users.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{
		userService: us,
	}
}

// registerUserRoutes registers all user-related routes.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade, adminOnly gin.HandlerFunc) {
	h := newUserHandler(userService)

	users := rg.Group("/users")
	{
		users.POST("", adminOnly, h.createUser)          // Admin only
		users.GET("", adminOnly, h.listUsers)            // Admin only
		users.GET("/:email", h.getUser)                  // Own or admin
		users.PUT("/:email", adminOnly, h.updateUser)    // Admin only
		users.DELETE("/:email", adminOnly, h.deleteUser) // Admin only

		users.POST("/:email/clients/:client_name", adminOnly, h.grantClientAccess)
		users.DELETE("/:email/clients/:client_name", adminOnly, h.revokeClientAccess)
		users.GET("/:email/clients/:client_name/access", h.checkClientAccess) // Own or admin
	}
}

// createUser godoc
// @Summary Create a new user
// @Description Creates a new user. Admin only.
// @Tags users
// @Accept  json
// @Produce  json
// @Param   user body dto.CreateUserRequest true "User details"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 500 {object} dto.ErrorResponse "Failed to create user"
// @Security BearerAuth
// @Router /users [post]
func (h *userHandler) createUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	logger.Info("Received request to create user", slog.String("email", req.Email))
	createdUser, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}

	logger.Info("User created successfully", slog.String("new_user_id", createdUser.UserID))
	c.JSON(http.StatusCreated, dto.ToUserResponse(createdUser))
}

// listUsers godoc
// @Summary List users
// @Description Retrieves all users. Admin only.
// @Tags users
// @Produce  json
// @Success 200 {array} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Failed to list users"
// @Security BearerAuth
// @Router /users [get]
func (h *userHandler) listUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUserResponse(users))
}

// getUser godoc
// @Summary Get a user by email
// @Description Retrieves a user. Callers may read their own record; admins may read any.
// @Tags users
// @Produce  json
// @Param   email path string true "User email"
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden (trying to access another user's details)"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve user"
// @Security BearerAuth
// @Router /users/{email} [get]
func (h *userHandler) getUser(c *gin.Context) {
	email := c.Param("email")
	if !h.selfOrAdmin(c, email) {
		return
	}

	user, err := h.userService.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updateUser godoc
// @Summary Update a user
// @Description Updates a user's profile, role, password or active flag. Admin only.
// @Tags users
// @Accept  json
// @Produce  json
// @Param   email path string true "User email"
// @Param   user body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to update user"
// @Security BearerAuth
// @Router /users/{email} [put]
func (h *userHandler) updateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("email"), req)
	if err != nil {
		respondError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// deleteUser godoc
// @Summary Delete a user
// @Description Deletes a user and their client grants. Admin only.
// @Tags users
// @Param   email path string true "User email"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse "Cannot delete yourself"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to delete user"
// @Security BearerAuth
// @Router /users/{email} [delete]
func (h *userHandler) deleteUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	email := c.Param("email")

	identity, _ := middleware.GetIdentityFromContext(c)
	if strings.EqualFold(identity.Email, email) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Cannot delete your own account"})
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), email); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}
	logger.Info("User deleted", slog.String("email", email))
	c.Status(http.StatusNoContent)
}

// grantClientAccess godoc
// @Summary Grant client access
// @Description Allows a user to read a client's financial data. Admin only.
// @Tags users
// @Produce  json
// @Param   email path string true "User email"
// @Param   client_name path string true "Client name"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "User or client not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to assign client"
// @Security BearerAuth
// @Router /users/{email}/clients/{client_name} [post]
func (h *userHandler) grantClientAccess(c *gin.Context) {
	email, clientName := c.Param("email"), c.Param("client_name")
	if err := h.userService.GrantClientAccess(c.Request.Context(), email, clientName); err != nil {
		respondError(c, err, "Failed to assign client")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Client access granted",
		slog.String("email", email), slog.String("client", clientName))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Client assigned successfully"})
}

// revokeClientAccess godoc
// @Summary Revoke client access
// @Description Removes a user's access to a client. Admin only.
// @Tags users
// @Produce  json
// @Param   email path string true "User email"
// @Param   client_name path string true "Client name"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Grant not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to remove client access"
// @Security BearerAuth
// @Router /users/{email}/clients/{client_name} [delete]
func (h *userHandler) revokeClientAccess(c *gin.Context) {
	email, clientName := c.Param("email"), c.Param("client_name")
	if err := h.userService.RevokeClientAccess(c.Request.Context(), email, clientName); err != nil {
		respondError(c, err, "Failed to remove client access")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Client access removed successfully"})
}

// checkClientAccess godoc
// @Summary Check client access
// @Description Reports whether a user may read a client. Callers may check themselves; admins anyone.
// @Tags users
// @Produce  json
// @Param   email path string true "User email"
// @Param   client_name path string true "Client name"
// @Success 200 {object} dto.ClientAccessResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to check client access"
// @Security BearerAuth
// @Router /users/{email}/clients/{client_name}/access [get]
func (h *userHandler) checkClientAccess(c *gin.Context) {
	email := c.Param("email")
	if !h.selfOrAdmin(c, email) {
		return
	}

	hasAccess, err := h.userService.HasClientAccess(c.Request.Context(), email, c.Param("client_name"))
	if err != nil {
		respondError(c, err, "Failed to check client access")
		return
	}
	c.JSON(http.StatusOK, dto.ClientAccessResponse{HasAccess: hasAccess})
}

// selfOrAdmin admits the caller when email is their own or they are an admin.
func (h *userHandler) selfOrAdmin(c *gin.Context, email string) bool {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		logger.Error("Identity not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return false
	}
	if identity.Role != domain.RoleAdmin && !strings.EqualFold(identity.Email, email) {
		logger.Warn("User forbidden to access another user's details", slog.String("target_email", email))
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
		return false
	}
	return true
}
