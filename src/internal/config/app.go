package config

import (
	"payment-service/src/internal/delivery/http"
	"payment-service/src/internal/delivery/http/middleware"
	"payment-service/src/internal/delivery/http/route"
	"payment-service/src/internal/gateway/messaging"
	"payment-service/src/internal/gateway/paygate"
	"payment-service/src/internal/repository"
	"payment-service/src/internal/usecase"
	"payment-service/src/pkg/databases/mysql"
	kafkaPkgConfluent "payment-service/src/pkg/kafka/confluent"
	"payment-service/src/pkg/log"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

type BootstrapConfig struct {
	DB          mysql.DBInterface
	App         *fiber.App
	Log         log.Log
	Validate    *validator.Validate
	Config      *viper.Viper
	Producer    kafkaPkgConfluent.Producer
	Redis       redis.UniversalClient
	AsynqClient *asynq.Client
	Async       *asynq.ServeMux
}

const (
	TypeSettlementDaily   = "settlement:daily"
	TypeSettlementWeekly  = "settlement:weekly"
	TypeReconciliationRun = "reconciliation:run"
)

func Bootstrap(config *BootstrapConfig) {
	// setup repositories
	walletRepository := repository.NewWalletRepository(config.DB)
	transactionRepository := repository.NewTransactionRepository(config.DB)
	qrRepository := repository.NewQrSessionRepository(config.DB)
	settlementRepository := repository.NewSettlementRepository(config.DB)
	rideRepository := repository.NewRideRepository(config.DB)
	driverRepository := repository.NewDriverRepository(config.DB)
	auditRepository := repository.NewAuditRepository(config.DB)

	paymentProducer := messaging.NewPaymentProducer(config.Producer, config.Log)
	gateway := paygate.NewClient(config.Config, config.Log)

	// setup use cases
	settler := usecase.NewSettler(config.Log, transactionRepository, walletRepository, paymentProducer)
	walletUseCase := usecase.NewWalletUseCase(
		config.Log,
		config.Validate,
		walletRepository,
		transactionRepository,
		gateway,
		config.Config,
	)
	webhookUseCase := usecase.NewWebhookUseCase(
		config.Log,
		config.Validate,
		transactionRepository,
		settler,
		config.Config,
	)
	qrUseCase := usecase.NewQrUseCase(
		config.Log,
		config.Validate,
		qrRepository,
		walletRepository,
		driverRepository,
		config.Config,
		config.Redis,
		paymentProducer,
	)
	settlementUseCase := usecase.NewSettlementUseCase(
		config.Log,
		config.Validate,
		settlementRepository,
		rideRepository,
		driverRepository,
		paymentProducer,
	)
	payoutUseCase := usecase.NewPayoutUseCase(
		config.Log,
		config.Validate,
		settlementRepository,
		driverRepository,
		auditRepository,
		gateway,
		paymentProducer,
		config.Config,
	)
	reconciliationUseCase := usecase.NewReconciliationUseCase(
		config.Log,
		transactionRepository,
		gateway,
		settler,
	)

	// setup controllers
	walletController := http.NewWalletController(walletUseCase, config.Log)
	qrController := http.NewQrController(qrUseCase, config.Log)
	webhookController := http.NewWebhookController(webhookUseCase, config.Log)
	adminController := http.NewAdminController(payoutUseCase, reconciliationUseCase, config.Log)

	// setup middleware
	authMiddleware := middleware.NewAuth(config.Config, config.Log)

	// scheduled work
	config.Async.HandleFunc(TypeSettlementDaily, settlementUseCase.HandleDailyTask)
	config.Async.HandleFunc(TypeSettlementWeekly, settlementUseCase.HandleWeeklyTask)
	config.Async.HandleFunc(TypeReconciliationRun, reconciliationUseCase.HandleReconcileTask)

	routeConfig := route.RouteConfig{
		App:               config.App,
		WalletController:  walletController,
		QrController:      qrController,
		WebhookController: webhookController,
		AdminController:   adminController,
		AuthMiddleware:    authMiddleware,
	}
	routeConfig.Setup()
}
