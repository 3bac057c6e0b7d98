package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"pushpress/internal/config"
	"pushpress/internal/db"
	"pushpress/internal/http/handlers"
	appmw "pushpress/internal/http/middleware"
	"pushpress/internal/http/nonce"
	"pushpress/internal/publish"
	"pushpress/internal/push"
	"pushpress/internal/vapid"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	var store db.Store
	if cfg.DatabaseURL == "" {
		log.Printf("APP_DATABASE_URL not set, using in-memory store (subscriptions are lost on restart)")
		store = db.NewMemoryStore()
	} else {
		gormDB, err := db.Connect(cfg)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		store = db.NewGormStore(gormDB)
	}

	db.StartPruneWorker(store, cfg.PruneAfterDays)

	if err := db.EnsureBootstrapAdmin(store, cfg); err != nil {
		log.Fatalf("failed to ensure bootstrap admin: %v", err)
	}
	if cfg.WebhookAPIKey != "" {
		if err := db.EnsureBootstrapAPIKey(store, cfg); err != nil {
			log.Printf("warning: failed to ensure bootstrap webhook key: %v", err)
		} else {
			log.Printf("webhook API key configured and associated with admin user")
		}
	}

	vapidMgr := vapid.NewManager(store)
	keys, err := vapidMgr.EnsureKeys()
	if err != nil {
		log.Fatalf("failed to ensure VAPID keys: %v", err)
	}
	log.Printf("VAPID public key: %s", keys.Public)

	push.InitMetrics()

	issuer := nonce.NewIssuer(cfg.NonceSecret, 0)
	composer := push.NewComposer(cfg, true)
	sender := push.NewWebPushSender(cfg.ContactEmail)
	engine := push.NewEngine(store, vapidMgr, sender, push.Options{
		Concurrency: cfg.SendConcurrency,
		Timeout:     cfg.SendTimeout,
	})
	publisher := publish.NewPublisher(store, composer, engine)

	r := router.New()

	// Global middleware chain: request logger, then router.
	handler := handlers.RequestLogger(r.Handler)

	r.GET("/healthz", handlers.Healthz())
	r.GET("/metricsz", handlers.MetricsExposition())

	// Public browser-facing surface.
	r.GET("/sw.js", handlers.ServiceWorker())
	r.GET("/push.js", handlers.PushClientScript())
	r.GET("/app.css", handlers.AppCSS())
	r.GET("/static/icon-192.png", handlers.AppIcon())
	r.GET("/push/config", handlers.PushConfig(cfg, vapidMgr, issuer))
	r.POST("/push/subscribe", handlers.Subscribe(store, issuer))
	r.POST("/push/unsubscribe", handlers.Unsubscribe(store, issuer))

	// CMS webhook.
	r.POST("/v1/events/published", appmw.BearerAuth(store)(handlers.PublishedEvent(publisher)))

	// Admin UI.
	r.GET("/login", handlers.LoginForm(cfg))
	r.POST("/login", handlers.LoginSubmit(store))
	r.GET("/logout", handlers.Logout())

	admin := appmw.AdminAuth(store, cfg)
	r.GET("/", admin(handlers.Dashboard(store, vapidMgr, cfg)))
	r.GET("/settings", admin(handlers.SettingsPage(store, cfg)))
	r.GET("/users", admin(handlers.UsersPage(store, cfg)))

	r.POST("/admin/notify", admin(handlers.SendNotification(composer, engine)))
	r.POST("/admin/auto-send", admin(handlers.SetAutoSend(store)))
	r.POST("/admin/vapid/regenerate", admin(handlers.RegenerateVAPIDKeys(vapidMgr)))
	r.GET("/admin/stats", admin(handlers.PushStats(store, vapidMgr)))
	r.GET("/admin/bursts", admin(handlers.RecentBursts(store)))

	r.POST("/users", admin(handlers.CreateUser(store)))
	r.POST("/users/{id}/reset-password", admin(handlers.ResetPassword(store, cfg)))
	r.POST("/users/{id}/delete", admin(handlers.DeleteUser(store, cfg)))
	r.POST("/settings/password", admin(handlers.ChangePasswordSelf(store, cfg)))

	r.POST("/apikeys", admin(handlers.CreateAPIKey(store)))
	r.POST("/apikeys/delete", admin(handlers.DeleteAPIKey(store, cfg)))
	r.POST("/apikeys/active", admin(handlers.SetActiveAPIKey(store)))

	log.Printf("pushpress listening on %s", cfg.ListenAddr)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
