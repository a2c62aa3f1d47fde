package usecase

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/gateway/paygate"
	"payment-service/src/internal/model"
	"payment-service/src/internal/model/converter"
	"payment-service/src/internal/repository"
	httpError "payment-service/src/pkg/http-error"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type PayoutUseCase struct {
	Log                  log.Log
	Validate             *validator.Validate
	SettlementRepository repository.SettlementStore
	DriverRepository     repository.DriverStore
	AuditRepository      repository.AuditStore
	Gateway              paygate.Gateway
	PaymentProducer      PaymentEvents
	Config               *viper.Viper
}

func NewPayoutUseCase(
	logger log.Log,
	validate *validator.Validate,
	settlementRepository repository.SettlementStore,
	driverRepository repository.DriverStore,
	auditRepository repository.AuditStore,
	gateway paygate.Gateway,
	paymentProducer PaymentEvents,
	cfg *viper.Viper,
) *PayoutUseCase {
	return &PayoutUseCase{
		Log:                  logger,
		Validate:             validate,
		SettlementRepository: settlementRepository,
		DriverRepository:     driverRepository,
		AuditRepository:      auditRepository,
		Gateway:              gateway,
		PaymentProducer:      paymentProducer,
		Config:               cfg,
	}
}

// ApproveAndProcess pushes one PENDING settlement to the driver's payout
// address. The operator PIN gates the call, the PENDING->PROCESSING claim makes
// double submission harmless, and every outcome lands in the audit log. A
// failed payout is reported as a result, not retried.
func (c *PayoutUseCase) ApproveAndProcess(ctx context.Context, actor string, request *model.PayoutRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("payout-usecase", errObj.Message, "ApproveAndProcess", request.SettlementID)
		return result
	}

	if !c.verifyPin(request.AdminPin) {
		c.audit(ctx, actor, "payout_denied", request.SettlementID, "invalid admin pin")
		errObj := httpError.NewForbidden()
		errObj.Message = "not authorized"
		result.Error = errObj
		c.Log.Error("payout-usecase", "payout denied, invalid admin pin", "ApproveAndProcess", request.SettlementID)
		return result
	}

	settlement, err := c.SettlementRepository.FindByID(ctx, request.SettlementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errObj := httpError.NewNotFound()
			errObj.Message = fmt.Sprintf("settlement %s not found", request.SettlementID)
			result.Error = errObj
			c.Log.Error("payout-usecase", errObj.Message, "ApproveAndProcess", request.SettlementID)
			return result
		}
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to load settlement: %v", err)
		result.Error = errObj
		c.Log.Error("payout-usecase", errObj.Message, "ApproveAndProcess", request.SettlementID)
		return result
	}

	claimed, err := c.SettlementRepository.Claim(ctx, settlement.ID, entity.SettlementStatusPending, entity.SettlementStatusProcessing)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to claim settlement: %v", err)
		result.Error = errObj
		c.Log.Error("payout-usecase", errObj.Message, "ApproveAndProcess", settlement.Reference)
		return result
	}
	if !claimed {
		errObj := httpError.NewConflict()
		errObj.Message = fmt.Sprintf("settlement is not pending (status %s)", settlement.Status)
		result.Error = errObj
		c.Log.Error("payout-usecase", errObj.Message, "ApproveAndProcess", settlement.Reference)
		return result
	}

	driver, err := c.DriverRepository.FindByID(ctx, settlement.DriverID)
	if err != nil {
		reason := fmt.Sprintf("driver lookup failed: %v", err)
		return c.fail(ctx, actor, settlement, reason)
	}
	if driver.PayoutAddress == "" {
		return c.fail(ctx, actor, settlement, "driver has no payout address")
	}

	// Fresh reference per attempt so a retried payout never collides with a
	// previous one at the gateway.
	paymentRef := fmt.Sprintf("PO-%s", uuid.NewString())
	payout, err := c.Gateway.SendPayout(ctx, &paygate.PayoutRequest{
		Address:   driver.PayoutAddress,
		Amount:    settlement.NetAmount,
		Currency:  "USD",
		Reference: paymentRef,
	})
	if err != nil {
		return c.fail(ctx, actor, settlement, fmt.Sprintf("gateway payout failed: %v", err))
	}

	paidAt := time.Now().UTC()
	if err := c.SettlementRepository.SetOutcome(ctx, settlement.ID, entity.SettlementStatusCompleted, &payout.TransactionID, nil, &paidAt); err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("payout sent but outcome not recorded: %v", err)
		result.Error = errObj
		c.Log.Error("payout-usecase", errObj.Message, "ApproveAndProcess", settlement.Reference)
		return result
	}

	settlement.Status = entity.SettlementStatusCompleted
	c.audit(ctx, actor, "payout_completed", settlement.ID, fmt.Sprintf("paid %s via %s", settlement.NetAmount, payout.TransactionID))
	if err := c.PaymentProducer.SendPayoutProcessed(converter.SettlementToPayoutEvent(settlement, payout.TransactionID)); err != nil {
		c.Log.Error("payout-usecase", fmt.Sprintf("failed to publish payout event: %v", err), "ApproveAndProcess", settlement.Reference)
	}

	c.Log.Info("payout-usecase", "payout completed", "ApproveAndProcess", settlement.Reference)
	result.Data = &model.PayoutResponse{
		Success:          true,
		Status:           string(entity.SettlementStatusCompleted),
		PaymentReference: payout.TransactionID,
		Message:          "payout processed",
	}

	return result
}

// fail records a FAILED outcome and returns it as data: the operator sees what
// happened and decides whether to retry. Nothing retries automatically.
func (c *PayoutUseCase) fail(ctx context.Context, actor string, settlement *entity.Settlement, reason string) utils.Result {
	var result utils.Result

	if err := c.SettlementRepository.SetOutcome(ctx, settlement.ID, entity.SettlementStatusFailed, nil, &reason, nil); err != nil {
		c.Log.Error("payout-usecase", fmt.Sprintf("failed to record payout failure: %v", err), "ApproveAndProcess", settlement.Reference)
	}
	c.audit(ctx, actor, "payout_failed", settlement.ID, reason)
	c.Log.Error("payout-usecase", fmt.Sprintf("payout failed: %s", reason), "ApproveAndProcess", settlement.Reference)

	result.Data = &model.PayoutResponse{
		Success: false,
		Status:  string(entity.SettlementStatusFailed),
		Message: reason,
	}
	return result
}

func (c *PayoutUseCase) verifyPin(pin string) bool {
	expected := c.Config.GetString("admin.pin_hash")
	if expected == "" {
		return false
	}
	sum := sha256.Sum256([]byte(pin))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

func (c *PayoutUseCase) audit(ctx context.Context, actor, action, settlementID, detail string) {
	err := c.AuditRepository.Append(ctx, &entity.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "settlement",
		EntityID: settlementID,
		Detail:   detail,
	})
	if err != nil {
		c.Log.Error("payout-usecase", fmt.Sprintf("failed to append audit log: %v", err), action, settlementID)
	}
}
