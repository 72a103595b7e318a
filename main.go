package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "locacar/internal/config"
	intdb "locacar/internal/db"
	"locacar/internal/events"
	router "locacar/internal/http"
	"locacar/internal/http/handlers"
	"locacar/internal/services"
	"locacar/internal/storage"
	"locacar/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.OpenDB(env)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if env.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := intdb.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("schema: %v", err)
		}
	}

	var pub events.Publisher = events.NopPublisher{}
	if env.AMQPURL != "" {
		rp, err := events.NewRabbitPublisher(env.AMQPURL, env.AMQPExchange)
		if err != nil {
			log.Printf("warning: rabbitmq unavailable, rental events disabled: %v", err)
		} else {
			pub = rp
		}
	}
	defer pub.Close()

	licenses, err := storage.NewLocalStore(env.UploadDir, router.LicenseURLPrefix)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	overdue := services.OverdueService{DB: db}
	hd := &handlers.Handler{
		DB:           db,
		Customers:    services.CustomerService{DB: db},
		Vehicles:     services.VehicleService{DB: db},
		Rentals:      services.NewRentalService(db, pub),
		Receipts:     services.ReceiptService{DB: db},
		Overdue:      overdue,
		Auth:         services.NewAuthService(env.JWTSecret, env.SessionTTL),
		Licenses:     licenses,
		CookieSecure: env.CookieSecure,
	}

	sched := cron.New()
	if env.OverdueCron != "" {
		_, err := sched.AddFunc(env.OverdueCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			svc := overdue.WithRequestID("cron")
			if _, err := svc.MarkLate(ctx, utils.Today()); err != nil {
				log.Printf("[ERROR] overdue sweep: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("invalid OVERDUE_CRON %q: %v", env.OverdueCron, err)
		}
		sched.Start()
		log.Printf("overdue sweep scheduled: %s", env.OverdueCron)
	}

	r := router.NewRouter(env, hd)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	<-sched.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}
