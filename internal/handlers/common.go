package handlers

import (
	"strconv"

	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
)

// parseIDParam 解析路径参数中的ID，失败时直接返回 400
func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, label+"格式错误")
		return 0, false
	}
	return uint(id), true
}

// parseIDQuery 解析查询参数中的ID；optional 为 true 时缺省返回0
func parseIDQuery(c *gin.Context, name, label string, optional bool) (uint, bool) {
	raw := c.Query(name)
	if raw == "" && optional {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, label+"格式错误")
		return 0, false
	}
	return uint(id), true
}
