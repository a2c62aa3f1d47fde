package http

import (
	"payment-service/src/internal/model"
	"payment-service/src/internal/usecase"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type WebhookController struct {
	Log     log.Log
	UseCase *usecase.WebhookUseCase
}

func NewWebhookController(useCase *usecase.WebhookUseCase, logger log.Log) *WebhookController {
	return &WebhookController{
		Log:     logger,
		UseCase: useCase,
	}
}

// PostWebhook receives the gateway's form-encoded confirmation. The gateway
// only understands a bare "OK" body; anything else makes it redeliver.
func (c *WebhookController) PostWebhook(ctx *fiber.Ctx) error {
	request := &model.WebhookRequest{
		Reference:         ctx.FormValue("reference"),
		ExternalReference: ctx.FormValue("externalreference"),
		Amount:            ctx.FormValue("amount"),
		Status:            ctx.FormValue("status"),
		Hash:              ctx.FormValue("hash"),
	}

	result := c.UseCase.Ingest(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return ctx.SendString("OK")
}
