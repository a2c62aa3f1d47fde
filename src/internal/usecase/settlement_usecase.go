package usecase

import (
	"context"
	"errors"
	"fmt"
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
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

var platformFeeRate = decimal.NewFromFloat(0.10)

type SettlementUseCase struct {
	Log                  log.Log
	Validate             *validator.Validate
	SettlementRepository repository.SettlementStore
	RideRepository       repository.RideStore
	DriverRepository     repository.DriverStore
	PaymentProducer      PaymentEvents
}

func NewSettlementUseCase(
	logger log.Log,
	validate *validator.Validate,
	settlementRepository repository.SettlementStore,
	rideRepository repository.RideStore,
	driverRepository repository.DriverStore,
	paymentProducer PaymentEvents,
) *SettlementUseCase {
	return &SettlementUseCase{
		Log:                  logger,
		Validate:             validate,
		SettlementRepository: settlementRepository,
		RideRepository:       rideRepository,
		DriverRepository:     driverRepository,
		PaymentProducer:      paymentProducer,
	}
}

// CalculateEarnings sums a driver's paid rides over [start, end) and takes the
// platform's 10% cut off the gross.
func (c *SettlementUseCase) CalculateEarnings(ctx context.Context, driverID string, start, end time.Time) (*model.EarningsResponse, error) {
	total, count, err := c.RideRepository.SumCompletedFares(ctx, driverID, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum completed fares: %w", err)
	}

	fee := total.Mul(platformFeeRate).Round(2)
	return &model.EarningsResponse{
		DriverID:  driverID,
		TotalFare: total,
		Fee:       fee,
		NetAmount: total.Sub(fee),
		RideCount: count,
	}, nil
}

// CreateSettlement records one settlement for the driver and period. A driver
// with nothing to settle gets no row, and a period already settled is a benign
// no-op thanks to the unique key on (driver_id, period, period_start).
func (c *SettlementUseCase) CreateSettlement(ctx context.Context, request *model.CreateSettlementRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("settlement-usecase", errObj.Message, "CreateSettlement", utils.ConvertString(request))
		return result
	}

	earnings, err := c.CalculateEarnings(ctx, request.DriverID, request.PeriodStart, request.PeriodEnd)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to calculate earnings: %v", err)
		result.Error = errObj
		c.Log.Error("settlement-usecase", errObj.Message, "CreateSettlement", request.DriverID)
		return result
	}

	if earnings.NetAmount.LessThanOrEqual(decimal.Zero) {
		c.Log.Info("settlement-usecase", "nothing to settle for period", "CreateSettlement", request.DriverID)
		result.Data = (*model.SettlementResponse)(nil)
		return result
	}

	settlement := &entity.Settlement{
		ID:          uuid.NewString(),
		DriverID:    request.DriverID,
		Amount:      earnings.TotalFare,
		Fee:         earnings.Fee,
		NetAmount:   earnings.NetAmount,
		Period:      entity.SettlementPeriod(request.Period),
		PeriodStart: request.PeriodStart,
		PeriodEnd:   request.PeriodEnd,
		Status:      entity.SettlementStatusPending,
		Reference:   fmt.Sprintf("STL-%s", uuid.NewString()),
	}
	if err := c.SettlementRepository.Create(ctx, settlement); err != nil {
		if errors.Is(err, repository.ErrDuplicateSettlement) {
			// Scheduler re-runs and overlapping manual triggers land here.
			c.Log.Info("settlement-usecase", "settlement already exists for period, skipping", "CreateSettlement", request.DriverID)
			result.Data = (*model.SettlementResponse)(nil)
			return result
		}
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to create settlement: %v", err)
		result.Error = errObj
		c.Log.Error("settlement-usecase", errObj.Message, "CreateSettlement", request.DriverID)
		return result
	}

	if err := c.PaymentProducer.SendSettlementCreated(converter.SettlementToEvent(settlement)); err != nil {
		c.Log.Error("settlement-usecase", fmt.Sprintf("failed to publish settlement event: %v", err), "CreateSettlement", settlement.Reference)
	}

	c.Log.Info("settlement-usecase", "settlement created", "CreateSettlement", settlement.Reference)
	result.Data = converter.SettlementToResponse(settlement)

	return result
}

// RunPeriod settles every verified driver for the window ending at the most
// recent UTC midnight. One driver failing does not stop the batch.
func (c *SettlementUseCase) RunPeriod(ctx context.Context, period entity.SettlementPeriod) error {
	start, end := periodWindow(period, time.Now().UTC())

	drivers, err := c.DriverRepository.FindVerified(ctx)
	if err != nil {
		return fmt.Errorf("list verified drivers: %w", err)
	}

	var failed int
	for i := range drivers {
		request := &model.CreateSettlementRequest{
			DriverID:    drivers[i].DriverID,
			Period:      string(period),
			PeriodStart: start,
			PeriodEnd:   end,
		}
		if result := c.CreateSettlement(ctx, request); result.Error != nil {
			failed++
			c.Log.Error("settlement-usecase",
				fmt.Sprintf("settlement failed for driver: %v", result.Error),
				"RunPeriod", drivers[i].DriverID)
		}
	}

	c.Log.Info("settlement-usecase",
		fmt.Sprintf("%s batch done: %d drivers, %d failed", period, len(drivers), failed),
		"RunPeriod", "")
	if failed > 0 {
		return fmt.Errorf("%d of %d settlements failed", failed, len(drivers))
	}
	return nil
}

func (c *SettlementUseCase) HandleDailyTask(ctx context.Context, t *asynq.Task) error {
	return c.RunPeriod(ctx, entity.SettlementPeriodDaily)
}

func (c *SettlementUseCase) HandleWeeklyTask(ctx context.Context, t *asynq.Task) error {
	return c.RunPeriod(ctx, entity.SettlementPeriodWeekly)
}

// periodWindow returns the closed-open UTC window that precedes now's
// midnight: the previous day for DAILY, the previous seven days for WEEKLY.
func periodWindow(period entity.SettlementPeriod, now time.Time) (time.Time, time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case entity.SettlementPeriodWeekly:
		return midnight.AddDate(0, 0, -7), midnight
	case entity.SettlementPeriodMonthly:
		return midnight.AddDate(0, -1, 0), midnight
	default:
		return midnight.AddDate(0, 0, -1), midnight
	}
}
