package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/internal/middleware"
	"github.com/gin-gonic/gin"
)

// authHandler handles authentication related requests.
type authHandler struct {
	userService  portssvc.UserAuthSvc
	tokenService portssvc.TokenSvcFacade
}

func newAuthHandler(us portssvc.UserAuthSvc, ts portssvc.TokenSvcFacade) *authHandler {
	return &authHandler{userService: us, tokenService: ts}
}

// login godoc
// @Summary User login
// @Description Authenticates a user by email and password and returns a signed access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials or disabled account"
// @Failure 429 {object} dto.ErrorResponse "Too many login attempts"
// @Failure 500 {object} dto.ErrorResponse
// @Router /login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid login request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Email and password are required"})
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	token, expiresAt, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: dto.LoginUser{
			UserID:    user.UserID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      string(user.Role),
		},
	})
}

// validateToken godoc
// @Summary Validate access token
// @Description Confirms the bearer token is valid and returns the identity it carries.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.ValidateTokenResponse
// @Failure 401 {object} dto.ErrorResponse "Missing token"
// @Failure 403 {object} dto.ErrorResponse "Invalid or expired token"
// @Security BearerAuth
// @Router /validate-token [get]
func (h *authHandler) validateToken(c *gin.Context) {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, dto.ValidateTokenResponse{
		Valid: true,
		Email: identity.Email,
		Role:  string(identity.Role),
	})
}
