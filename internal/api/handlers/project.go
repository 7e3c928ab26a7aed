package handlers

import (
	"net/http"

	"orghub-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ProjectHandler handles HTTP requests for projects
type ProjectHandler struct {
	service service.ProjectServiceInterface
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(service service.ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// CreateProject handles POST /api/v1/organizations/:id/projects
// @Summary Create a project
// @Description The owner defaults to the caller when the caller is a member
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Param project body service.CreateProjectRequest true "Project data"
// @Success 201 {object} service.ProjectResponse
// @Failure 403 {object} ErrorResponse "Permission denied"
// @Failure 409 {object} ErrorResponse "Project already exists"
// @Security BearerAuth
// @Router /organizations/{id}/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orgID, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	var req service.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.service.Create(c.Request.Context(), actor, orgID, &req)
	if err != nil {
		respondError(c, err, "Failed to create project")
		return
	}

	c.JSON(http.StatusCreated, project)
}

// ListProjects handles GET /api/v1/organizations/:id/projects
// @Summary List projects of an organization
// @Tags projects
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.ProjectListResponse
// @Security BearerAuth
// @Router /organizations/{id}/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orgID, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	page, pageSize := pagination(c)
	response, err := h.service.ListByOrganization(c.Request.Context(), actor, orgID, page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to list projects")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetProject handles GET /api/v1/projects/:id
// @Summary Get project by ID
// @Tags projects
// @Produce json
// @Param id path string true "Project ID (UUID)"
// @Success 200 {object} service.ProjectResponse
// @Failure 404 {object} ErrorResponse "Project not found"
// @Security BearerAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to get project")
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateProject handles PUT /api/v1/projects/:id
// @Summary Update project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID (UUID)"
// @Param project body service.UpdateProjectRequest true "Project data"
// @Success 200 {object} service.ProjectResponse
// @Security BearerAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	var req service.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.service.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err, "Failed to update project")
		return
	}

	c.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /api/v1/projects/:id
// @Summary Delete project
// @Tags projects
// @Param id path string true "Project ID (UUID)"
// @Success 204 "Project deleted"
// @Security BearerAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "Failed to delete project")
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignOwner handles PUT /api/v1/projects/:id/owner
// @Summary Assign project owner
// @Description The new owner must be a member of the project's organization
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID (UUID)"
// @Param owner body service.AssignOwnerRequest true "New owner"
// @Success 200 {object} service.ProjectResponse
// @Failure 403 {object} ErrorResponse "Owner is not a member"
// @Security BearerAuth
// @Router /projects/{id}/owner [put]
func (h *ProjectHandler) AssignOwner(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	var req service.AssignOwnerRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.service.AssignOwner(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err, "Failed to assign project owner")
		return
	}

	c.JSON(http.StatusOK, project)
}
