package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parsePage reads the page and page_size query parameters. Values that
// fail to parse fall back to the defaults instead of erroring; range
// clamping happens in the repository layer.
func parsePage(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil {
		pageSize = 10
	}
	return page, pageSize
}

// parseID parses a positive decimal path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
