package http

import (
	"payment-service/src/internal/delivery/http/middleware"
	"payment-service/src/internal/model"
	"payment-service/src/internal/usecase"
	httpError "payment-service/src/pkg/http-error"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AdminController struct {
	Log                   log.Log
	PayoutUseCase         *usecase.PayoutUseCase
	ReconciliationUseCase *usecase.ReconciliationUseCase
}

func NewAdminController(
	payoutUseCase *usecase.PayoutUseCase,
	reconciliationUseCase *usecase.ReconciliationUseCase,
	logger log.Log,
) *AdminController {
	return &AdminController{
		Log:                   logger,
		PayoutUseCase:         payoutUseCase,
		ReconciliationUseCase: reconciliationUseCase,
	}
}

func (c *AdminController) requireAdmin(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	if auth.Role != "admin" {
		errObj := httpError.NewForbidden()
		errObj.Message = "admin role required"
		return errObj
	}
	return nil
}

func (c *AdminController) PostPayout(ctx *fiber.Ctx) error {
	if err := c.requireAdmin(ctx); err != nil {
		return utils.ResponseError(err, ctx)
	}
	auth := middleware.GetUser(ctx)

	request := new(model.PayoutRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("AdminController.PostPayout", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.SettlementID = ctx.Params("id")

	result := c.PayoutUseCase.ApproveAndProcess(ctx.Context(), auth.UserID, request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Payout", fiber.StatusOK, ctx)
}

// PostReconciliationRun triggers an out-of-schedule pass, mainly for operators
// chasing a stuck top-up.
func (c *AdminController) PostReconciliationRun(ctx *fiber.Ctx) error {
	if err := c.requireAdmin(ctx); err != nil {
		return utils.ResponseError(err, ctx)
	}

	result := c.ReconciliationUseCase.Run(ctx.Context())
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Reconciliation Pass", fiber.StatusOK, ctx)
}
