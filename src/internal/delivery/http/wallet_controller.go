package http

import (
	"payment-service/src/internal/delivery/http/middleware"
	"payment-service/src/internal/model"
	"payment-service/src/internal/usecase"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletController struct {
	Log     log.Log
	UseCase *usecase.WalletUseCase
}

func NewWalletController(useCase *usecase.WalletUseCase, logger log.Log) *WalletController {
	return &WalletController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *WalletController) PostTopUp(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	request := new(model.TopUpRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("WalletController.PostTopUp", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.UserID = auth.UserID

	result := c.UseCase.TopUp(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Top Up Initiated", fiber.StatusAccepted, ctx)
}

func (c *WalletController) GetBalance(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	result := c.UseCase.GetBalance(ctx.Context(), auth.UserID)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Wallet Balance", fiber.StatusOK, ctx)
}

func (c *WalletController) GetTransactions(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	request := &model.ListTransactionsRequest{
		UserID: auth.UserID,
		Limit:  ctx.QueryInt("limit"),
		Offset: ctx.QueryInt("offset"),
	}
	result := c.UseCase.ListTransactions(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Wallet Transactions", fiber.StatusOK, ctx)
}
