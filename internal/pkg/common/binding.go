package common

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var jsonNamesOnce sync.Once

// UseJSONFieldNames 讓驗證錯誤回報 json 欄位名稱
func UseJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// BindingError 將 ShouldBindJSON 的錯誤轉為 CustomError
func BindingError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrPayloadTooLarge.WithErr(err)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return ErrInvalidRequest.WithMessage(fe.Field() + " is required").WithErr(err)
		case "datetime":
			return ErrInvalidRequest.WithMessage(fe.Field() + " must match " + fe.Param()).WithErr(err)
		default:
			return ErrInvalidRequest.WithMessage(fe.Field() + " is invalid").WithErr(err)
		}
	}

	return ErrInvalidRequest.WithMessage("invalid JSON body").WithErr(err)
}
