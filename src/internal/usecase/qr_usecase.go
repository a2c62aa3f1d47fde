package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
	"payment-service/src/internal/model/converter"
	"payment-service/src/internal/repository"
	httpError "payment-service/src/pkg/http-error"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const qrSessionTTL = 5 * time.Minute

var (
	qrMinAmount = decimal.NewFromFloat(0.5)
	qrMaxAmount = decimal.NewFromInt(100)
)

type QrUseCase struct {
	Log              log.Log
	Validate         *validator.Validate
	QrRepository     repository.QrSessionStore
	WalletRepository repository.WalletStore
	DriverRepository repository.DriverStore
	Config           *viper.Viper
	Redis            redis.UniversalClient
	PaymentProducer  PaymentEvents
}

func NewQrUseCase(
	logger log.Log,
	validate *validator.Validate,
	qrRepository repository.QrSessionStore,
	walletRepository repository.WalletStore,
	driverRepository repository.DriverStore,
	cfg *viper.Viper,
	redisClient redis.UniversalClient,
	paymentProducer PaymentEvents,
) *QrUseCase {
	return &QrUseCase{
		Log:              logger,
		Validate:         validate,
		QrRepository:     qrRepository,
		WalletRepository: walletRepository,
		DriverRepository: driverRepository,
		Config:           cfg,
		Redis:            redisClient,
		PaymentProducer:  paymentProducer,
	}
}

// Generate mints a single-use payment request for a driver: random code,
// five-minute expiry, payload the client renders as a scannable matrix.
func (c *QrUseCase) Generate(ctx context.Context, request *model.GenerateQrRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Generate", utils.ConvertString(request))
		return result
	}

	if request.Amount.LessThan(qrMinAmount) || request.Amount.GreaterThan(qrMaxAmount) {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("amount must be between %s and %s", qrMinAmount, qrMaxAmount)
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Generate", request.Amount.String())
		return result
	}

	driver, err := c.DriverRepository.FindByID(ctx, request.DriverID)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = fmt.Sprintf("driver with id %s not found", request.DriverID)
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Generate", utils.ConvertString(err))
		return result
	}

	// The driver wallet must exist before any payer can credit it.
	if _, err := c.WalletRepository.GetOrCreate(ctx, driver.DriverID); err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to provision driver wallet: %v", err)
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Generate", driver.DriverID)
		return result
	}

	code, err := newQrCode()
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to mint qr code: %v", err)
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Generate", "")
		return result
	}

	expiresAt := time.Now().UTC().Add(qrSessionTTL)
	payload := model.QrPayload{
		Type:      model.QrPayloadTypePayment,
		QrCode:    code,
		DriverID:  driver.DriverID,
		Amount:    request.Amount,
		ExpiresAt: expiresAt,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to marshal qr payload: %v", err)
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Generate", "")
		return result
	}

	session := &entity.QrPaymentSession{
		ID:        uuid.NewString(),
		DriverID:  driver.DriverID,
		Amount:    request.Amount,
		QrCode:    code,
		QrData:    string(payloadJSON),
		ExpiresAt: expiresAt,
	}
	if err := c.QrRepository.Create(ctx, session); err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to persist qr session: %v", err)
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Generate", code)
		return result
	}

	// Cache keyed by code so any instance can pre-validate a scan; the
	// database row stays authoritative.
	key := fmt.Sprintf("QR:SESSION:%s", code)
	if redisErr := c.Redis.Set(ctx, key, payloadJSON, qrSessionTTL).Err(); redisErr != nil {
		c.Log.Error("qr-usecase", fmt.Sprintf("failed to cache qr session: %v", redisErr), "Generate", code)
	}

	c.Log.Info("qr-usecase", "qr session generated", "Generate", code)
	result.Data = &model.GenerateQrResponse{
		SessionID: session.ID,
		QrCode:    code,
		QrData:    session.QrData,
		Amount:    session.Amount,
		ExpiresAt: expiresAt,
	}

	return result
}

// Redeem consumes a session at most once. All money movement and the used
// flag commit in one repository transaction, so a lost race leaves no partial
// state behind.
func (c *QrUseCase) Redeem(ctx context.Context, request *model.RedeemQrRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Redeem", utils.ConvertString(request))
		return result
	}

	code, err := parseQrInput(request.QrData)
	if err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = err.Error()
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Redeem", request.QrData)
		return result
	}

	session, err := c.QrRepository.FindByCode(ctx, code)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "invalid qr code"
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Redeem", code)
		return result
	}

	if session.IsUsed {
		errObj := httpError.NewConflict()
		errObj.Message = "qr code has already been used"
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Redeem", code)
		return result
	}

	if session.IsExpired(time.Now().UTC()) {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "qr code has expired"
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Redeem", code)
		return result
	}

	payerWallet, err := c.WalletRepository.GetOrCreate(ctx, request.PayerID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to load payer wallet: %v", err)
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Redeem", request.PayerID)
		return result
	}
	if payerWallet.Balance.LessThan(session.Amount) {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "insufficient balance, please top up"
		result.Error = errObj
		c.Log.Error("qr-usecase", errObj.Message, "Redeem", request.PayerID)
		return result
	}

	meta, _ := json.Marshal(map[string]string{"qrCode": session.QrCode, "sessionId": session.ID})
	metadata := string(meta)
	debitLeg := &entity.Transaction{
		ID:            uuid.NewString(),
		UserID:        request.PayerID,
		Type:          entity.TransactionTypePayment,
		Amount:        session.Amount.Neg(),
		Fee:           decimal.Zero,
		NetAmount:     session.Amount.Neg(),
		Status:        entity.TransactionStatusCompleted,
		PaymentMethod: "WALLET",
		Reference:     fmt.Sprintf("QR-%s-D", session.ID),
		Metadata:      &metadata,
	}
	creditLeg := &entity.Transaction{
		ID:            uuid.NewString(),
		UserID:        session.DriverID,
		Type:          entity.TransactionTypePayment,
		Amount:        session.Amount,
		Fee:           decimal.Zero,
		NetAmount:     session.Amount,
		Status:        entity.TransactionStatusCompleted,
		PaymentMethod: "WALLET",
		Reference:     fmt.Sprintf("QR-%s-C", session.ID),
		Metadata:      &metadata,
	}

	if err := c.QrRepository.Redeem(ctx, session, request.PayerID, debitLeg, creditLeg); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyUsed):
			errObj := httpError.NewConflict()
			errObj.Message = "qr code has already been used"
			result.Error = errObj
			c.Log.Error("qr-usecase", errObj.Message, "Redeem", code)
		case errors.Is(err, repository.ErrInsufficientBalance):
			errObj := httpError.NewUnprocessableEntity()
			errObj.Message = "insufficient balance, please top up"
			result.Error = errObj
			c.Log.Error("qr-usecase", errObj.Message, "Redeem", request.PayerID)
		default:
			errObj := httpError.NewInternalServerError()
			errObj.Message = fmt.Sprintf("failed to redeem qr session: %v", err)
			result.Error = errObj
			c.Log.Error("qr-usecase", errObj.Message, "Redeem", code)
		}
		return result
	}

	key := fmt.Sprintf("QR:SESSION:%s", code)
	if redisErr := c.Redis.Del(ctx, key).Err(); redisErr != nil {
		c.Log.Error("qr-usecase", fmt.Sprintf("failed to drop qr cache entry: %v", redisErr), "Redeem", code)
	}

	event := converter.TransactionToEvent(creditLeg, "qr")
	if err := c.PaymentProducer.SendTransactionCompleted(event); err != nil {
		c.Log.Error("qr-usecase", fmt.Sprintf("failed to publish qr payment event: %v", err), "Redeem", code)
	}

	c.Log.Info("qr-usecase", "qr session redeemed", "Redeem", code)
	result.Data = &model.RedeemQrResponse{
		SessionID:      session.ID,
		DriverID:       session.DriverID,
		Amount:         session.Amount,
		DebitReference: debitLeg.Reference,
		PayerBalance:   payerWallet.Balance.Sub(session.Amount),
	}

	return result
}

func newQrCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "QR" + hex.EncodeToString(buf), nil
}

// parseQrInput accepts either the bare session code or the scanned JSON
// payload. JSON input must carry the PAYMENT type tag and a code; anything
// else fails closed instead of being guessed at.
func parseQrInput(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("empty qr data")
	}

	if strings.HasPrefix(trimmed, "{") {
		var payload model.QrPayload
		if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
			return "", fmt.Errorf("malformed qr payload")
		}
		if payload.Type != model.QrPayloadTypePayment {
			return "", fmt.Errorf("unsupported qr payload type %q", payload.Type)
		}
		if payload.QrCode == "" {
			return "", fmt.Errorf("qr payload is missing the code")
		}
		return payload.QrCode, nil
	}

	return trimmed, nil
}
