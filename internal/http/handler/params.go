package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"captainhub.app/relay/common/id"
)

func workspaceIDParam(c *gin.Context) (int64, bool) {
	wsID, err := id.Parse(c.Param("workspace_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workspace id"})
		return 0, false
	}
	return wsID, true
}
