package usecase

import (
	"context"
	"errors"
	"fmt"

	"payment-service/src/internal/gateway/paygate"
	"payment-service/src/internal/model"
	"payment-service/src/internal/repository"
	httpError "payment-service/src/pkg/http-error"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type WebhookUseCase struct {
	Log                   log.Log
	Validate              *validator.Validate
	TransactionRepository repository.TransactionStore
	Settler               *Settler
	Config                *viper.Viper
}

func NewWebhookUseCase(
	logger log.Log,
	validate *validator.Validate,
	transactionRepository repository.TransactionStore,
	settler *Settler,
	cfg *viper.Viper,
) *WebhookUseCase {
	return &WebhookUseCase{
		Log:                   logger,
		Validate:              validate,
		TransactionRepository: transactionRepository,
		Settler:               settler,
		Config:                cfg,
	}
}

// Ingest handles one gateway confirmation. Delivery is at-least-once and may
// race the reconciliation poller on the same transaction; both paths settle
// through the shared claim-based protocol.
func (c *WebhookUseCase) Ingest(ctx context.Context, request *model.WebhookRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("webhook-usecase", errObj.Message, "Ingest", utils.ConvertString(request))
		return result
	}

	secret := c.Config.GetString("paygate.webhook_secret")
	if !paygate.VerifySignature(request.Reference, request.ExternalReference, request.Amount, request.Status, secret, request.Hash) {
		bypass := c.Config.GetBool("paygate.skip_signature_check") && c.Config.GetString("app.env") != "production"
		if !bypass {
			errObj := httpError.NewUnauthorized()
			errObj.Message = "signature mismatch"
			result.Error = errObj
			c.Log.Error("webhook-usecase", "webhook signature mismatch, rejecting", "Ingest", request.Reference)
			return result
		}
		c.Log.Error("webhook-usecase",
			"SIGNATURE CHECK BYPASSED (paygate.skip_signature_check is set, non-production only)",
			"Ingest", request.Reference)
	}

	tx, err := c.TransactionRepository.FindByReference(ctx, request.Reference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errObj := httpError.NewNotFound()
			errObj.Message = fmt.Sprintf("no transaction with reference %s", request.Reference)
			result.Error = errObj
			c.Log.Error("webhook-usecase", errObj.Message, "Ingest", request.Reference)
			return result
		}
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to load transaction: %v", err)
		result.Error = errObj
		c.Log.Error("webhook-usecase", errObj.Message, "Ingest", request.Reference)
		return result
	}

	if tx.ExternalRef == nil || *tx.ExternalRef == "" {
		if err := c.TransactionRepository.SetExternalRef(ctx, tx.ID, request.ExternalReference); err != nil {
			c.Log.Error("webhook-usecase", fmt.Sprintf("failed to store external ref: %v", err), "Ingest", request.Reference)
		}
	}

	outcome, err := c.Settler.Apply(ctx, tx, request.Status, "webhook")
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to settle transaction: %v", err)
		result.Error = errObj
		c.Log.Error("webhook-usecase", errObj.Message, "Ingest", request.Reference)
		return result
	}

	c.Log.Info("webhook-usecase", fmt.Sprintf("webhook handled with outcome %s", outcome), "Ingest", request.Reference)
	result.Data = outcome

	return result
}
