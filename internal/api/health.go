package api

import (
	"krishna_store/internal/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and the running environment
func HealthHandler(environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.Success(c, http.StatusOK, "OK", gin.H{
			"environment": environment,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
