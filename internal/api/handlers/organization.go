package handlers

import (
	"encoding/json"
	"net/http"

	"orghub-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// OrganizationHandler handles HTTP requests for organizations
type OrganizationHandler struct {
	service service.OrganizationServiceInterface
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(service service.OrganizationServiceInterface) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// CreateOrganization handles POST /api/v1/organizations
// @Summary Create a new organization
// @Description Create an organization; the caller becomes its first owner
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body service.CreateOrganizationRequest true "Organization data"
// @Success 201 {object} service.OrganizationResponse "Successfully created organization"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 409 {object} ErrorResponse "Organization already exists"
// @Security BearerAuth
// @Router /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req service.CreateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err, "Failed to create organization")
		return
	}

	c.JSON(http.StatusCreated, org)
}

// ListOrganizations handles GET /api/v1/organizations
// @Summary List organizations
// @Description List the organizations the caller belongs to; platform administrators see all of them
// @Tags organizations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.OrganizationListResponse
// @Security BearerAuth
// @Router /organizations [get]
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	page, pageSize := pagination(c)
	response, err := h.service.ListForUser(c.Request.Context(), actor, page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to list organizations")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetOrganization handles GET /api/v1/organizations/:id
// @Summary Get organization by ID
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Success 200 {object} service.OrganizationResponse
// @Failure 403 {object} ErrorResponse "Not a member"
// @Failure 404 {object} ErrorResponse "Organization not found"
// @Security BearerAuth
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	org, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to get organization")
		return
	}

	c.JSON(http.StatusOK, org)
}

// UpdateOrganization handles PUT /api/v1/organizations/:id
// @Summary Update organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Param organization body service.UpdateOrganizationRequest true "Organization data"
// @Success 200 {object} service.OrganizationResponse
// @Failure 403 {object} ErrorResponse "Permission denied"
// @Security BearerAuth
// @Router /organizations/{id} [put]
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	var req service.UpdateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.service.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err, "Failed to update organization")
		return
	}

	c.JSON(http.StatusOK, org)
}

// DeleteOrganization handles DELETE /api/v1/organizations/:id
// @Summary Delete organization
// @Description Delete an organization together with its memberships and projects
// @Tags organizations
// @Param id path string true "Organization ID (UUID)"
// @Success 204 "Organization deleted"
// @Failure 403 {object} ErrorResponse "Permission denied"
// @Security BearerAuth
// @Router /organizations/{id} [delete]
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "Failed to delete organization")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSettings handles GET /api/v1/organizations/:id/settings
// @Summary Get organization settings
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /organizations/{id}/settings [get]
func (h *OrganizationHandler) GetSettings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	settings, err := h.service.GetSettings(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to get settings")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", settings)
}

// UpdateSettings handles PUT /api/v1/organizations/:id/settings
// @Summary Replace organization settings
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Param settings body map[string]interface{} true "Settings document"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Settings must be a JSON object"
// @Security BearerAuth
// @Router /organizations/{id}/settings [put]
func (h *OrganizationHandler) UpdateSettings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	var settings json.RawMessage
	if !bindJSON(c, &settings) {
		return
	}

	updated, err := h.service.UpdateSettings(c.Request.Context(), actor, id, settings)
	if err != nil {
		respondError(c, err, "Failed to update settings")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", updated)
}

// ListAuditLogs handles GET /api/v1/organizations/:id/audit-logs
// @Summary List organization audit records
// @Description Newest first. Requires manage_settings.
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.AuditLogListResponse
// @Security BearerAuth
// @Router /organizations/{id}/audit-logs [get]
func (h *OrganizationHandler) ListAuditLogs(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	page, pageSize := pagination(c)
	response, err := h.service.ListAuditLogs(c.Request.Context(), actor, id, page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to list audit logs")
		return
	}

	c.JSON(http.StatusOK, response)
}
