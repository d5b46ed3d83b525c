package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adegadigital/adega-backend/api/controllers"
	"github.com/adegadigital/adega-backend/api/middleware"
	"github.com/adegadigital/adega-backend/internal/cart"
	"github.com/adegadigital/adega-backend/internal/coupons"
	"github.com/adegadigital/adega-backend/internal/loyalty"
	"github.com/adegadigital/adega-backend/internal/marketing"
	"github.com/adegadigital/adega-backend/internal/notifications"
	"github.com/adegadigital/adega-backend/internal/orders"
	"github.com/adegadigital/adega-backend/internal/products"
	"github.com/adegadigital/adega-backend/internal/settings"
	"github.com/adegadigital/adega-backend/internal/users"
	"github.com/adegadigital/adega-backend/pkg/config"
	"github.com/adegadigital/adega-backend/pkg/db"
	"github.com/adegadigital/adega-backend/pkg/logger"
	"github.com/adegadigital/adega-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	userService users.Service,
	productService products.Service,
	cartService cart.Service,
	couponService coupons.Service,
	orderService orders.Service,
	loyaltyService loyalty.Service,
	marketingService marketing.Service,
	settingsService settings.Service,
	notificationsService notifications.Service,
	statusConsumer *notifications.Consumer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/settings", controllers.SettingsFetch(settingsService, logg))
		r.Get("/banners", controllers.BannerList(marketingService, logg))
		r.Get("/events", controllers.EventList(marketingService, logg))
		r.Get("/brands", controllers.BrandList(productService, logg))
		r.Get("/products", controllers.ProductList(productService, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(productService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(userService, logg))
		r.Post("/login", controllers.AuthLogin(userService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, cfg.Checkout, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.UserProfile(userService, logg))
			r.Put("/", controllers.UserProfileUpdate(userService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items", controllers.CartUpdateQuantity(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/coupon", controllers.CartApplyCoupon(cartService, logg))
			r.Delete("/coupon", controllers.CartRemoveCoupon(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(orderService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/stream", controllers.OrderStatusStream(statusConsumer, logg))
			r.Get("/{orderId}", controllers.OrderDetail(orderService, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoriteList(productService, logg))
			r.Post("/{productId}", controllers.FavoriteAdd(productService, logg))
			r.Delete("/{productId}", controllers.FavoriteRemove(productService, logg))
		})

		r.Route("/points", func(r chi.Router) {
			r.Get("/", controllers.PointsBalance(loyaltyService, logg))
			r.Get("/history", controllers.PointsHistory(loyaltyService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Get("/unread", controllers.UnreadNotificationCount(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(redisClient, cfg.Checkout, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(productService, logg))
			r.Post("/", controllers.AdminProductCreate(productService, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(productService, logg))
		})
		r.Post("/brands", controllers.AdminBrandCreate(productService, logg))

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminCouponList(couponService, logg))
			r.Post("/", controllers.AdminCouponCreate(couponService, logg))
			r.Patch("/{couponId}", controllers.AdminCouponUpdate(couponService, logg))
			r.Delete("/{couponId}", controllers.AdminCouponDeactivate(couponService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(orderService, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderUpdateStatus(orderService, logg))
		})

		r.Post("/users/{userId}/points", controllers.AdminPointsGrant(loyaltyService, logg))

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", controllers.AdminBannerList(marketingService, logg))
			r.Post("/", controllers.AdminBannerCreate(marketingService, logg))
			r.Patch("/{bannerId}", controllers.AdminBannerUpdate(marketingService, logg))
			r.Delete("/{bannerId}", controllers.AdminBannerDelete(marketingService, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.AdminEventList(marketingService, logg))
			r.Post("/", controllers.AdminEventCreate(marketingService, logg))
			r.Patch("/{eventId}", controllers.AdminEventUpdate(marketingService, logg))
			r.Delete("/{eventId}", controllers.AdminEventDelete(marketingService, logg))
		})

		r.Put("/settings", controllers.AdminSettingsUpdate(settingsService, logg))
	})

	return r
}
