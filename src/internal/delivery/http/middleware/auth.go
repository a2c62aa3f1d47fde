package middleware

import (
	"fmt"
	"strings"

	httpError "payment-service/src/pkg/http-error"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/token"
	"payment-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

const authLocalKey = "auth"

// NewAuth verifies the Bearer token and stashes its claims for handlers.
func NewAuth(v *viper.Viper, logger log.Log) fiber.Handler {
	secret := []byte(v.GetString("jwt.secret"))

	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		rawToken, found := strings.CutPrefix(header, "Bearer ")
		if !found || rawToken == "" {
			errObj := httpError.NewUnauthorized()
			errObj.Message = "missing bearer token"
			return utils.ResponseError(errObj, ctx)
		}

		claim := new(token.Claim)
		parsed, err := jwt.ParseWithClaims(rawToken, claim, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			logger.Error("auth-middleware", fmt.Sprintf("token rejected: %v", err), "NewAuth", ctx.Path())
			errObj := httpError.NewUnauthorized()
			errObj.Message = "invalid or expired token"
			return utils.ResponseError(errObj, ctx)
		}

		ctx.Locals(authLocalKey, &claim.Metadata)
		return ctx.Next()
	}
}

func GetUser(ctx *fiber.Ctx) *token.Metadata {
	if auth, ok := ctx.Locals(authLocalKey).(*token.Metadata); ok {
		return auth
	}
	return &token.Metadata{}
}
