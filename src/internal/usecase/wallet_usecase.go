package usecase

import (
	"context"
	"fmt"

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
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type WalletUseCase struct {
	Log                   log.Log
	Validate              *validator.Validate
	WalletRepository      repository.WalletStore
	TransactionRepository repository.TransactionStore
	Gateway               paygate.Gateway
	Config                *viper.Viper
}

func NewWalletUseCase(
	logger log.Log,
	validate *validator.Validate,
	walletRepository repository.WalletStore,
	transactionRepository repository.TransactionStore,
	gateway paygate.Gateway,
	cfg *viper.Viper,
) *WalletUseCase {
	return &WalletUseCase{
		Log:                   logger,
		Validate:              validate,
		WalletRepository:      walletRepository,
		TransactionRepository: transactionRepository,
		Gateway:               gateway,
		Config:                cfg,
	}
}

// TopUp opens the asynchronous top-up loop: a PENDING ledger row plus a charge
// at the gateway. The wallet is only credited later, by whichever of the
// webhook ingestor or the reconciliation poller wins the claim.
func (c *WalletUseCase) TopUp(ctx context.Context, request *model.TopUpRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("wallet-usecase", errObj.Message, "TopUp", utils.ConvertString(request))
		return result
	}

	if request.Amount.LessThanOrEqual(decimal.Zero) {
		errObj := httpError.NewBadRequest()
		errObj.Message = "top-up amount must be greater than zero"
		result.Error = errObj
		c.Log.Error("wallet-usecase", errObj.Message, "TopUp", request.Amount.String())
		return result
	}

	wallet, err := c.WalletRepository.GetOrCreate(ctx, request.UserID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to load wallet: %v", err)
		result.Error = errObj
		c.Log.Error("wallet-usecase", errObj.Message, "TopUp", request.UserID)
		return result
	}

	tx := &entity.Transaction{
		ID:            uuid.NewString(),
		UserID:        request.UserID,
		Type:          entity.TransactionTypeTopUp,
		Amount:        request.Amount,
		Fee:           decimal.Zero,
		NetAmount:     request.Amount,
		Status:        entity.TransactionStatusPending,
		PaymentMethod: request.PaymentMethod,
		Reference:     fmt.Sprintf("TOPUP-%s", uuid.NewString()),
	}
	if err := c.TransactionRepository.Create(ctx, tx); err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to record transaction: %v", err)
		result.Error = errObj
		c.Log.Error("wallet-usecase", errObj.Message, "TopUp", tx.Reference)
		return result
	}

	charge, err := c.Gateway.CreateCharge(ctx, &paygate.ChargeRequest{
		Reference:   tx.Reference,
		Amount:      tx.Amount,
		Currency:    wallet.Currency,
		Description: "wallet top-up",
		CustomerID:  request.UserID,
	})
	if err != nil {
		// Gateway unreachable: fail the row so the user sees an explicit
		// failed transaction, never a silently stuck one.
		if _, claimErr := c.TransactionRepository.Claim(ctx, tx.ID, entity.TransactionStatusPending, entity.TransactionStatusFailed); claimErr != nil {
			c.Log.Error("wallet-usecase", fmt.Sprintf("failed to mark transaction FAILED: %v", claimErr), "TopUp", tx.Reference)
		}
		errObj := httpError.NewInternalServerError()
		errObj.Message = "payment gateway is unavailable, please try again"
		result.Error = errObj
		c.Log.Error("wallet-usecase", fmt.Sprintf("create charge failed: %v", err), "TopUp", tx.Reference)
		return result
	}

	if err := c.TransactionRepository.SetExternalRef(ctx, tx.ID, charge.ExternalRef); err != nil {
		c.Log.Error("wallet-usecase", fmt.Sprintf("failed to store external ref: %v", err), "TopUp", tx.Reference)
	}

	c.Log.Info("wallet-usecase", "top-up initiated", "TopUp", tx.Reference)
	result.Data = &model.TopUpResponse{
		Reference:   tx.Reference,
		ExternalRef: charge.ExternalRef,
		Amount:      tx.Amount,
		Status:      string(entity.TransactionStatusPending),
		CheckoutURL: charge.CheckoutURL,
	}

	return result
}

func (c *WalletUseCase) GetBalance(ctx context.Context, userID string) utils.Result {
	var result utils.Result

	wallet, err := c.WalletRepository.GetOrCreate(ctx, userID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to load wallet: %v", err)
		result.Error = errObj
		c.Log.Error("wallet-usecase", errObj.Message, "GetBalance", userID)
		return result
	}

	result.Data = converter.WalletToBalanceResponse(wallet)
	return result
}

func (c *WalletUseCase) ListTransactions(ctx context.Context, request *model.ListTransactionsRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("wallet-usecase", errObj.Message, "ListTransactions", utils.ConvertString(request))
		return result
	}

	limit := request.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := request.Offset
	if offset < 0 {
		offset = 0
	}

	txs, err := c.TransactionRepository.ListByUser(ctx, request.UserID, limit, offset)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to list transactions: %v", err)
		result.Error = errObj
		c.Log.Error("wallet-usecase", errObj.Message, "ListTransactions", request.UserID)
		return result
	}

	responses := make([]*model.TransactionResponse, 0, len(txs))
	for i := range txs {
		responses = append(responses, converter.TransactionToResponse(&txs[i]))
	}
	result.Data = responses

	return result
}
