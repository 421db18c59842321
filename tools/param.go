package tools

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID 读取路径参数中的正整数 id
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("无效的 %s: %q", name, c.Param(name))
	}
	return uint(id), nil
}
