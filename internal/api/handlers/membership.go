package handlers

import (
	"net/http"

	"orghub-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// MembershipHandler handles HTTP requests for organization memberships
type MembershipHandler struct {
	service service.MembershipServiceInterface
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(service service.MembershipServiceInterface) *MembershipHandler {
	return &MembershipHandler{service: service}
}

// ListMembers handles GET /api/v1/organizations/:id/members
// @Summary List organization members
// @Tags memberships
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Success 200 {array} service.MembershipResponse
// @Failure 403 {object} ErrorResponse "Not a member"
// @Security BearerAuth
// @Router /organizations/{id}/members [get]
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orgID, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), actor, orgID)
	if err != nil {
		respondError(c, err, "Failed to list members")
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members, "total": len(members)})
}

// GetMember handles GET /api/v1/organizations/:id/members/:userId
// @Summary Get one membership
// @Tags memberships
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Param userId path string true "User ID (UUID)"
// @Success 200 {object} service.MembershipResponse
// @Failure 404 {object} ErrorResponse "Membership not found"
// @Security BearerAuth
// @Router /organizations/{id}/members/{userId} [get]
func (h *MembershipHandler) GetMember(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orgID, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	member, err := h.service.GetMember(c.Request.Context(), actor, orgID, userID)
	if err != nil {
		respondError(c, err, "Failed to get member")
		return
	}

	c.JSON(http.StatusOK, member)
}

// AddMember handles POST /api/v1/organizations/:id/members
// @Summary Add a user to the organization
// @Description Role defaults to member. Only owners may add owners.
// @Tags memberships
// @Accept json
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Param member body service.AddMemberRequest true "Membership data"
// @Success 201 {object} service.MembershipResponse
// @Failure 403 {object} ErrorResponse "Refused by membership rules"
// @Failure 409 {object} ErrorResponse "Already a member"
// @Security BearerAuth
// @Router /organizations/{id}/members [post]
func (h *MembershipHandler) AddMember(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orgID, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	var req service.AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.service.AddMember(c.Request.Context(), actor, orgID, &req)
	if err != nil {
		respondError(c, err, "Failed to add member")
		return
	}

	c.JSON(http.StatusCreated, member)
}

// RemoveMember handles DELETE /api/v1/organizations/:id/members/:userId
// @Summary Remove a member
// @Tags memberships
// @Param id path string true "Organization ID (UUID)"
// @Param userId path string true "User ID (UUID)"
// @Success 204 "Member removed"
// @Failure 403 {object} ErrorResponse "Refused by membership rules"
// @Failure 409 {object} ErrorResponse "Last owner"
// @Security BearerAuth
// @Router /organizations/{id}/members/{userId} [delete]
func (h *MembershipHandler) RemoveMember(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orgID, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), actor, orgID, userID); err != nil {
		respondError(c, err, "Failed to remove member")
		return
	}

	c.Status(http.StatusNoContent)
}

// LeaveOrganization handles POST /api/v1/organizations/:id/leave
// @Summary Leave the organization
// @Tags memberships
// @Param id path string true "Organization ID (UUID)"
// @Success 204 "Left the organization"
// @Failure 409 {object} ErrorResponse "Last owner"
// @Security BearerAuth
// @Router /organizations/{id}/leave [post]
func (h *MembershipHandler) LeaveOrganization(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orgID, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}

	if err := h.service.LeaveOrganization(c.Request.Context(), actor, orgID); err != nil {
		respondError(c, err, "Failed to leave organization")
		return
	}

	c.Status(http.StatusNoContent)
}

// ChangeRole handles PUT /api/v1/organizations/:id/members/:userId/role
// @Summary Change a member's role
// @Tags memberships
// @Accept json
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Param userId path string true "User ID (UUID)"
// @Param role body service.ChangeRoleRequest true "New role"
// @Success 200 {object} service.MembershipResponse
// @Failure 403 {object} ErrorResponse "Refused by membership rules"
// @Failure 409 {object} ErrorResponse "Last owner"
// @Security BearerAuth
// @Router /organizations/{id}/members/{userId}/role [put]
func (h *MembershipHandler) ChangeRole(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orgID, ok := uuidParam(c, "id", "organization")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	var req service.ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.service.ChangeRole(c.Request.Context(), actor, orgID, userID, &req)
	if err != nil {
		respondError(c, err, "Failed to change role")
		return
	}

	c.JSON(http.StatusOK, member)
}
