package main

import (
	"context"
	"strings"
	"time"

	"storefront-api/auth"
	"storefront-api/configs"
	"storefront-api/controllers/accounts"
	"storefront-api/controllers/addresses"
	"storefront-api/controllers/analytics"
	"storefront-api/controllers/cart"
	"storefront-api/controllers/catalog"
	"storefront-api/controllers/orders"
	"storefront-api/controllers/products"
	"storefront-api/controllers/reviews"
	"storefront-api/controllers/user"
	"storefront-api/events"
	"storefront-api/mail"
	"storefront-api/middlewares"
	"storefront-api/payments"
	"storefront-api/pricing"
	"storefront-api/responses"
	"storefront-api/routes"
	"storefront-api/storage"
	"storefront-api/stores"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	gormlogger "gorm.io/gorm/logger"
)

func logLevel(name string) log.Level {
	switch strings.ToLower(name) {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

func newMailer(cfg configs.Config) *mail.Mailer {
	if cfg.SMTPHost == "" {
		return mail.NewMailer(mail.LogSender{}, cfg.AppURL)
	}
	return mail.NewMailer(mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}), cfg.AppURL)
}

func newImageStore(ctx context.Context, cfg configs.Config) storage.Store {
	if cfg.S3Bucket == "" {
		log.Warn("S3_BUCKET not set, image uploads disabled")
		return storage.Disabled{}
	}
	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		PublicURL: cfg.S3PublicURL,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		log.Fatalw("failed to configure image storage", "error", err)
	}
	return store
}

func newGateway(cfg configs.Config) payments.Gateway {
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		log.Warn("Razorpay keys not set, card payments disabled")
		return payments.Disabled{}
	}
	return payments.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
}

func newPublisher(cfg configs.Config) (events.Publisher, func()) {
	if cfg.RabbitMQURL == "" {
		return events.Nop{}, func() {}
	}
	p, err := events.DialAMQP(cfg.RabbitMQURL, events.Exchange)
	if err != nil {
		log.Errorw("event publishing disabled", "error", err)
		return events.Nop{}, func() {}
	}
	return p, func() { _ = p.Close() }
}

func newKV(ctx context.Context, cfg configs.Config) stores.KV {
	switch cfg.StoreBackend {
	case "mongo":
		client, err := configs.ConnectMongo(cfg.MongoURI)
		if err != nil {
			log.Fatalw("failed to connect to MongoDB", "error", err)
		}
		kv := stores.NewMongoKV(configs.GetCollection(client, cfg.MongoDatabase, "client_stores"))
		if err := kv.EnsureTTL(ctx, stores.DefaultTTL); err != nil {
			log.Warnw("failed to create TTL index", "error", err)
		}
		return kv
	case "redis":
		client, err := configs.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalw("failed to connect to Redis", "error", err)
		}
		return stores.NewRedisKV(client, stores.DefaultTTL)
	default:
		return stores.NewMemoryKV(stores.DefaultTTL)
	}
}

func main() {
	cfg := configs.Load()
	log.SetLevel(logLevel(cfg.LogLevel))
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx := context.Background()
	db, err := configs.ConnectDB(cfg.DBDriver, cfg.DatabaseURL, gormlogger.Warn)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}

	signer := auth.NewSigner(cfg.JWTSecret)
	mailer := newMailer(cfg)
	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()

	kv := newKV(ctx, cfg)
	rules := pricing.Rules{DeliveryFee: cfg.DeliveryFee, FreeDeliveryThreshold: cfg.FreeDeliveryThreshold}
	carts := stores.NewCartStore(kv, rules)
	wishlist := stores.NewWishlist(kv)
	history := stores.NewHistory(kv)

	users := user.NewService(db, signer, mailer, auth.NewThrottle(time.Minute, 3), map[string]user.IdentityProvider{
		"google":   user.Google{},
		"facebook": user.Facebook{},
	})
	productSvc := products.NewService(db, newImageStore(ctx, cfg))
	orderSvc := orders.NewService(db, orders.Deps{
		Mailer:   mailer,
		Events:   publisher,
		Payments: newGateway(cfg),
		Carts:    carts,
		Rules:    rules,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: responses.ErrorHandler,
		BodyLimit:    2 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	mw := middlewares.NewAuth(signer)
	routes.UserRoute(app, mw, user.NewController(users))
	routes.AccountRoute(app, mw, accounts.NewController(accounts.NewService(db, users)))
	routes.AddressRoutes(app, mw, addresses.NewController(addresses.NewService(db)))
	routes.CatalogRoutes(app, mw, catalog.NewController(catalog.NewService(db)))
	routes.ProductsRoute(app, mw, products.NewController(productSvc, history))
	routes.CartRoutes(app, cart.NewController(cart.NewService(productSvc, carts, wishlist, history)))
	routes.OrderRoutes(app, mw, orders.NewController(orderSvc))
	routes.ReviewRoutes(app, mw, reviews.NewController(reviews.NewService(db)))
	routes.AnalyticsRoutes(app, mw, analytics.NewController(analytics.NewService(db)))

	log.Infow("storefront api listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
