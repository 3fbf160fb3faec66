package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batchplan-api/internal/middleware"
	"github.com/noah-isme/batchplan-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

var currentYear = func() int {
	return time.Now().UTC().Year()
}
