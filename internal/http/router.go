package api

import (
	"log"
	stdhttp "net/http"

	"locacar/internal/config"
	h "locacar/internal/http/handlers"
	"locacar/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// LicenseURLPrefix is where uploaded license images are served from.
const LicenseURLPrefix = "/license-images"

func NewRouter(env config.Env, hd *h.Handler) *gin.Engine {
	h.RegisterValidators()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if env.UploadDir != "" {
		r.Static(LicenseURLPrefix, env.UploadDir)
	}

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", hd.Routes)

		// Public
		auth := api.Group("/auth")
		auth.POST("/login", hd.Login)
		auth.POST("/logout", hd.Logout)
		api.POST("/customers", hd.CreateCustomer)

		secured := api.Group("")
		secured.Use(middleware.RequireSession(hd.Auth))

		secured.GET("/auth/me", hd.Me)

		// Customers
		customers := secured.Group("/customers")
		customers.GET("", hd.ListCustomers)
		customers.GET("/search", hd.SearchCustomers)
		customers.GET("/tax-id/:taxId", hd.GetCustomerByTaxID)
		customers.GET("/:id", hd.GetCustomer)
		customers.GET("/:id/rentals", hd.GetCustomerRentals)
		customers.PATCH("/:id", hd.PatchCustomer)
		customers.DELETE("/:id", hd.DeleteCustomer)

		// Vehicles
		vehicles := secured.Group("/vehicles")
		vehicles.GET("", hd.ListVehicles)
		vehicles.POST("", hd.CreateVehicle)
		vehicles.GET("/available", hd.ListAvailableVehicles)
		vehicles.GET("/plate/:plate", hd.GetVehicleByPlate)
		vehicles.GET("/:id", hd.GetVehicle)
		vehicles.PUT("/:id", hd.ReplaceVehicle)
		vehicles.PATCH("/:id", hd.PatchVehicle)
		vehicles.PATCH("/:id/status", hd.SetVehicleStatus)
		vehicles.DELETE("/:id", hd.DeleteVehicle)
		vehicles.GET("/:id/rentals", hd.GetVehicleRentals)

		// Rentals
		rentals := secured.Group("/rentals")
		rentals.POST("", hd.CreateRental)
		rentals.GET("", hd.ListRentals)
		rentals.GET("/active", hd.ListActiveRentals)
		rentals.GET("/overdue", hd.ListOverdueRentals)
		rentals.POST("/overdue/mark-late", hd.MarkOverdueLate)
		rentals.POST("/license-images", hd.UploadLicenseImage)
		rentals.GET("/:id", hd.GetRental)
		rentals.PATCH("/:id", hd.PatchRental)
		rentals.DELETE("/:id", hd.DeleteRental)
		rentals.POST("/:id/finish", hd.FinishRental)
		rentals.POST("/:id/cancel", hd.CancelRental)
		rentals.GET("/:id/receipt", hd.GetRentalReceipt)
	}

	hd.SetRouter(r)
	return r
}
