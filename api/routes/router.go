package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradeyard/tradeyard-backend/api/controllers"
	"github.com/tradeyard/tradeyard-backend/api/middleware"
	"github.com/tradeyard/tradeyard-backend/internal/analytics"
	"github.com/tradeyard/tradeyard-backend/internal/balance"
	"github.com/tradeyard/tradeyard-backend/internal/orders"
	"github.com/tradeyard/tradeyard-backend/internal/refunds"
	"github.com/tradeyard/tradeyard-backend/internal/shops"
	"github.com/tradeyard/tradeyard-backend/internal/wallet"
	"github.com/tradeyard/tradeyard-backend/internal/withdraws"
	"github.com/tradeyard/tradeyard-backend/pkg/config"
	"github.com/tradeyard/tradeyard-backend/pkg/db"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
	"github.com/tradeyard/tradeyard-backend/pkg/logger"
	"github.com/tradeyard/tradeyard-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	shopService shops.Service,
	orderService orders.Service,
	refundService refunds.Service,
	withdrawService withdraws.Service,
	walletService wallet.Service,
	balanceService balance.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	moneyPolicy := middleware.NewRateLimitPolicy(
		"money",
		cfg.RateLimit.MoneyWindow,
		cfg.RateLimit.MoneyIPLimit,
		cfg.RateLimit.MoneyUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Get("/wallets/me", controllers.WalletMe(walletService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(orderService, logg))
		})

		r.With(middleware.RateLimit(moneyPolicy, redisClient, logg)).
			Post("/refunds", controllers.RefundCreate(refundService, logg))
		r.Get("/refunds", controllers.RefundListMine(refundService, logg))
		r.Get("/refunds/{refundId}", controllers.RefundDetail(refundService, logg))

		r.Route("/shop", func(r chi.Router) {
			r.Use(middleware.ShopContext(logg))
			r.Use(middleware.RequireShopAccess(shopService, logg))

			r.Get("/orders", controllers.ShopOrderList(orderService, logg))
			r.Get("/refunds", controllers.ShopRefundList(refundService, logg))
			r.Get("/balance", controllers.BalanceMe(balanceService, logg))
			r.Get("/analytics", controllers.ShopAnalytics(analyticsService, logg))

			r.With(middleware.RateLimit(moneyPolicy, redisClient, logg)).
				Post("/withdraws", controllers.WithdrawRequest(withdrawService, logg))
			r.Get("/withdraws", controllers.WithdrawList(withdrawService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRoles(logg, enums.RoleSuperAdmin))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/shops/{shopId}", func(r chi.Router) {
			r.Get("/", controllers.ShopDetail(shopService, logg))
			r.Get("/balance", controllers.BalanceDetail(balanceService, logg))
			r.Post("/approve", controllers.ShopApprove(shopService, logg))
			r.Post("/disapprove", controllers.ShopDisapprove(shopService, logg))
		})

		r.Post("/orders/{orderId}/settle", controllers.OrderSettle(orderService, logg))
		r.Post("/refunds/{refundId}/status", controllers.RefundResolve(refundService, logg))
		r.Post("/withdraws/{withdrawId}/status", controllers.WithdrawResolve(withdrawService, logg))
		r.Post("/wallets/credit", controllers.WalletCredit(walletService, logg))

		r.Get("/analytics/platform", controllers.PlatformAnalytics(analyticsService, logg))
	})

	return r
}
