package route

import (
	"payment-service/src/internal/delivery/http"
	"payment-service/src/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App               *fiber.App
	WalletController  *http.WalletController
	QrController      *http.QrController
	WebhookController *http.WebhookController
	AdminController   *http.AdminController
	AuthMiddleware    fiber.Handler
}

func (c *RouteConfig) Setup() {
	c.App.Use(middleware.NewLogger())
	c.App.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})

	// The gateway authenticates with its payload signature, not a bearer token.
	c.App.Post("/payments/v1/webhook", c.WebhookController.PostWebhook)

	c.SetupAuthRoute()
}

func (c *RouteConfig) SetupAuthRoute() {
	c.App.Use(c.AuthMiddleware)

	c.App.Post("/wallets/v1/topup", c.WalletController.PostTopUp)
	c.App.Get("/wallets/v1/balance", c.WalletController.GetBalance)
	c.App.Get("/wallets/v1/transactions", c.WalletController.GetTransactions)

	c.App.Post("/qr/v1/generate", c.QrController.PostGenerate)
	c.App.Post("/qr/v1/redeem", c.QrController.PostRedeem)

	c.App.Post("/admin/v1/settlements/:id/payout", c.AdminController.PostPayout)
	c.App.Post("/admin/v1/reconciliation/run", c.AdminController.PostReconciliationRun)
}
