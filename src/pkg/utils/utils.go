package utils

import (
	"encoding/json"
	"errors"
	"strconv"

	httpError "payment-service/src/pkg/http-error"

	"github.com/gofiber/fiber/v2"
)

// Result is the envelope every usecase returns to its controller.
type Result struct {
	Data  interface{}
	Error error
}

type baseResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Response(data interface{}, message string, code int, ctx *fiber.Ctx) error {
	return ctx.Status(code).JSON(baseResponse{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func ResponseError(err error, ctx *fiber.Ctx) error {
	var commonErr *httpError.CommonError
	if errors.As(err, &commonErr) {
		return ctx.Status(commonErr.Code).JSON(baseResponse{
			Success: false,
			Code:    commonErr.Code,
			Message: commonErr.Message,
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(baseResponse{
		Success: false,
		Code:    fiber.StatusInternalServerError,
		Message: err.Error(),
	})
}

// ConvertString marshals any value into a string for log metadata.
func ConvertString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case error:
		return s.Error()
	case nil:
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func ConvertInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}
