package main

import (
	"log"

	"kiranakart/config/cache"
	config "kiranakart/config/database"
	customer_handler "kiranakart/internal/customerHandler"
	cust_middleware "kiranakart/internal/middleware"
	storefront_handler "kiranakart/internal/storefrontHandler"
	vendor_handler "kiranakart/internal/vendorHandler"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	storefront_handler.UseLogger(logger)

	// connect to db and cache
	config.InitDB()
	defer config.CloseDB()
	cache.InitCache()
	defer cache.CloseCache()

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// public routes
	e.POST("/customer/register", customer_handler.RegisterCustomer)
	e.POST("/customer/login", customer_handler.LoginCustomer)
	e.POST("/vendor/register", vendor_handler.RegisterVendor)
	e.POST("/vendor/login", vendor_handler.LoginVendor)

	// public storefront
	storefront := e.Group("/storefront")
	storefront.GET("/vendors", storefront_handler.ListVendors)
	storefront.GET("/feed", storefront_handler.GetFeed)
	storefront.GET("/feed/category/:category", storefront_handler.GetCategoryFeed)
	storefront.GET("/vendors/:mobile/products", storefront_handler.ListVendorProducts)
	storefront.GET("/vendors/:mobile/offers", storefront_handler.ListVendorOffers)
	storefront.GET("/ads", storefront_handler.ListAds)

	// cart routes serve both guests (X-Guest-ID header) and customers
	cart := e.Group("/cart")
	cart.Use(cust_middleware.OptionalJWTMiddleware)
	cart.GET("/:vendor", customer_handler.GetCart)
	cart.POST("/:vendor/increment/:item", customer_handler.IncrementCartItem)
	cart.POST("/:vendor/decrement/:item", customer_handler.DecrementCartItem)

	// protected routes for customer using JWT middleware
	customerGroup := e.Group("/customer")
	customerGroup.Use(cust_middleware.JWTMiddleware)

	customerGroup.POST("/cart/:vendor/merge", customer_handler.MergeGuestCart)
	customerGroup.GET("/addresses", customer_handler.ListAddresses)
	customerGroup.POST("/addresses", customer_handler.CreateAddress)
	customerGroup.DELETE("/addresses/:id", customer_handler.DeleteAddress)
	customerGroup.POST("/checkout/:vendor", customer_handler.Checkout)
	customerGroup.GET("/orders", customer_handler.ListOrders)
	customerGroup.GET("/orders/:id", customer_handler.GetOrder)
	customerGroup.GET("/orders/:id/events", customer_handler.OrderEvents)

	// protected routes for vendors
	vendorGroup := e.Group("/vendor")
	vendorGroup.Use(cust_middleware.JWTMiddleware)

	vendorGroup.PUT("/profile", vendor_handler.UpdateProfile)
	vendorGroup.GET("/products", vendor_handler.ListOwnProducts)
	vendorGroup.POST("/products", vendor_handler.CreateProduct)
	vendorGroup.PUT("/products/:id", vendor_handler.UpdateProduct)
	vendorGroup.DELETE("/products/:id", vendor_handler.DeleteProduct)
	vendorGroup.GET("/offers", vendor_handler.ListOwnOffers)
	vendorGroup.POST("/offers", vendor_handler.CreateOffer)
	vendorGroup.PUT("/offers/:id", vendor_handler.UpdateOffer)
	vendorGroup.DELETE("/offers/:id", vendor_handler.DeleteOffer)
	vendorGroup.GET("/orders", vendor_handler.ListVendorOrders)
	vendorGroup.PUT("/orders/:id/status", vendor_handler.UpdateOrderStatus)

	// start the server at 8080
	e.Logger.Fatal(e.Start(":8080"))
}
