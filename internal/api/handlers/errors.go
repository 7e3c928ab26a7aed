package handlers

import (
	"net/http"
	"strconv"

	"orghub-backend/internal/auth"
	apperrors "orghub-backend/internal/errors"
	"orghub-backend/internal/logger"
	"orghub-backend/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps service errors onto HTTP status codes.
// Unrecognised errors become 500 with fallback as the message.
func respondError(c *gin.Context, err error, fallback string) {
	if kind, ok := apperrors.MembershipKind(err); ok {
		status := http.StatusForbidden
		if kind == apperrors.KindAlreadyMember || kind == apperrors.KindLastOwner {
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Reason: string(kind)})
		return
	}

	switch {
	case apperrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case apperrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case apperrors.IsAuthentication(err):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case apperrors.IsAuthorization(err):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		logger.WithContext(c.Request.Context()).WithField("error", err.Error()).Error(fallback)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback, Details: err.Error()})
	}
}

// requireActor returns the authenticated actor or writes 401
func requireActor(c *gin.Context) (rbac.Actor, bool) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return rbac.Actor{}, false
	}
	return actor, true
}

// uuidParam parses a path parameter or writes 400
func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + label + " ID: invalid UUID format"})
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads page and page_size; the service clamps out-of-range values
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return false
	}
	return true
}
