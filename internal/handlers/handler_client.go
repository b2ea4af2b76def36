package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/internal/middleware"
	"github.com/gin-gonic/gin"
)

// clientHandler handles HTTP requests related to tenants.
type clientHandler struct {
	clientService portssvc.ClientSvcFacade
}

// registerClientRoutes registers all client-related routes. Deletion is admin only.
func registerClientRoutes(rg *gin.RouterGroup, clientService portssvc.ClientSvcFacade, adminOnly gin.HandlerFunc) {
	h := &clientHandler{clientService: clientService}

	clients := rg.Group("/clients")
	{
		clients.GET("", h.listClients)
		clients.POST("", h.createClient)
		clients.PATCH("/:client_id", h.updateClient)
		clients.DELETE("/:client_id", adminOnly, h.deleteClient)
	}
}

// listClients godoc
// @Summary List clients
// @Description Lists all tenants, optionally filtered by status.
// @Tags clients
// @Produce json
// @Param status query string false "Filter by status (active, inactive)"
// @Success 200 {array} dto.ClientResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /clients [get]
func (h *clientHandler) listClients(c *gin.Context) {
	var params dto.ListClientsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	clients, err := h.clientService.ListClients(c.Request.Context(), params.Status)
	if err != nil {
		respondError(c, err, "Failed to fetch clients")
		return
	}
	c.JSON(http.StatusOK, dto.ToListClientResponse(clients))
}

// createClient godoc
// @Summary Create a client
// @Description Registers a tenant. The comments table name is derived from the client name.
// @Tags clients
// @Accept json
// @Produce json
// @Param client body dto.CreateClientRequest true "Client details"
// @Success 201 {object} dto.ClientResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Client already exists"
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /clients [post]
func (h *clientHandler) createClient(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create client")
		return
	}

	logger.Info("Client created", slog.Int64("client_id", client.ClientID), slog.String("client", client.ClientName))
	c.JSON(http.StatusCreated, dto.ToClientResponse(client))
}

// updateClient godoc
// @Summary Update a client
// @Description Updates the name, dataset or status of a tenant.
// @Tags clients
// @Accept json
// @Produce json
// @Param client_id path int true "Client ID"
// @Param client body dto.UpdateClientRequest true "Fields to update"
// @Success 200 {object} dto.ClientResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Client not found"
// @Failure 409 {object} dto.ErrorResponse "Client name already taken"
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /clients/{client_id} [patch]
func (h *clientHandler) updateClient(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), clientID, req)
	if err != nil {
		respondError(c, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, dto.ToClientResponse(client))
}

// deleteClient godoc
// @Summary Delete a client
// @Description Deletes a tenant and its user grants. Admin only.
// @Tags clients
// @Produce json
// @Param client_id path int true "Client ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Client not found"
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /clients/{client_id} [delete]
func (h *clientHandler) deleteClient(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), clientID); err != nil {
		respondError(c, err, "Failed to delete client")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Client deleted", slog.Int64("client_id", clientID))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Client deleted successfully"})
}

func parseClientID(c *gin.Context) (int64, bool) {
	clientID, err := strconv.ParseInt(c.Param("client_id"), 10, 64)
	if err != nil || clientID <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid client ID"})
		return 0, false
	}
	return clientID, true
}
