package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/palemoky/philosophy-catalog-api/internal/errors"
	"github.com/palemoky/philosophy-catalog-api/internal/helpers"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
)

// parseID extracts and validates a positive int64 ID from a URL parameter.
// Returns the ID and true if successful, or sends an error response and returns false.
func parseID(c *gin.Context, param, entityName string) (int64, bool) {
	id, ok := helpers.ParsePositiveID(c.Param(param))
	if !ok {
		respondAPIError(c, apierrors.InvalidID(entityName+" ID"))
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body into req. Any binding failure is a 422.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondAPIError(c, apierrors.Validation(err.Error()))
		return false
	}
	return true
}

// respondAPIError sends a structured error response and stops the handler chain.
func respondAPIError(c *gin.Context, err *apierrors.APIError) {
	c.AbortWithStatusJSON(err.HTTPStatus, gin.H{"error": err})
}

// respondStoreError maps a store failure onto its API error. Internal failures
// are logged with the cause, which never reaches the client.
func respondStoreError(c *gin.Context, err error, resource string) {
	apiErr := apierrors.FromStore(err, resource)
	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("Store operation failed",
			zap.String("resource", resource),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	respondAPIError(c, apiErr)
}

// respondOK sends a JSON success response with the given data.
func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func respondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
