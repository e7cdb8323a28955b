package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a numeric path parameter. On failure it writes the 422
// response and returns false.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid " + name})
		return 0, false
	}

	return uint(id), true
}
