package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": s.registry.List()})
}
