package middleware

import (
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// abortWithError 以統一格式回傳錯誤並中止請求
func abortWithError(c *gin.Context, err *common.CustomError) {
	c.AbortWithStatusJSON(err.Status, common.NewErrorResponse(err, false))
}
