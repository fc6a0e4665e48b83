package common

import (
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// NewErrorResponse 將 CustomError 轉為 API 錯誤響應，debug 時附上原始錯誤
func NewErrorResponse(err *CustomError, debug bool) ErrorResponse {
	resp := ErrorResponse{
		Error: err.Message,
		Code:  err.Code,
	}
	if debug && err.Err != nil {
		resp.Details = err.Err.Error()
	}
	return resp
}
