package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"captainhub.app/relay/internal/mapper"
)

func UESSchema(c *gin.Context) {
	c.JSON(http.StatusOK, mapper.UESSchema())
}
