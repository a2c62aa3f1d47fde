package http

import (
	"payment-service/src/internal/delivery/http/middleware"
	"payment-service/src/internal/model"
	"payment-service/src/internal/usecase"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type QrController struct {
	Log     log.Log
	UseCase *usecase.QrUseCase
}

func NewQrController(useCase *usecase.QrUseCase, logger log.Log) *QrController {
	return &QrController{
		Log:     logger,
		UseCase: useCase,
	}
}

// PostGenerate lets a driver mint a payment request for their own wallet.
func (c *QrController) PostGenerate(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	request := new(model.GenerateQrRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("QrController.PostGenerate", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.DriverID = auth.UserID

	result := c.UseCase.Generate(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "QR Session Generated", fiber.StatusCreated, ctx)
}

func (c *QrController) PostRedeem(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	request := new(model.RedeemQrRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("QrController.PostRedeem", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.PayerID = auth.UserID

	result := c.UseCase.Redeem(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "QR Payment Completed", fiber.StatusOK, ctx)
}
