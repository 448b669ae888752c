package router

import (
	"github.com/gin-gonic/gin"
	"github.com/zywang/bookmart-backend/config"
	"github.com/zywang/bookmart-backend/internal/app/controller"
	"github.com/zywang/bookmart-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	userController      *controller.UserController
	bookController      *controller.BookController
	schoolController    *controller.SchoolController
	orderController     *controller.OrderController
	reviewController    *controller.ReviewController
	recommendController *controller.RecommendController
	adminController     *controller.AdminController
	logisticsController *controller.LogisticsController
	imController        *controller.IMController
	uploadController    *controller.UploadController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	bookController *controller.BookController,
	schoolController *controller.SchoolController,
	orderController *controller.OrderController,
	reviewController *controller.ReviewController,
	recommendController *controller.RecommendController,
	adminController *controller.AdminController,
	logisticsController *controller.LogisticsController,
	imController *controller.IMController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		userController:      userController,
		bookController:      bookController,
		schoolController:    schoolController,
		orderController:     orderController,
		reviewController:    reviewController,
		recommendController: recommendController,
		adminController:     adminController,
		logisticsController: logisticsController,
		imController:        imController,
		uploadController:    uploadController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "BOOKMART API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		users := v1.Group("/users")
		{
			users.GET("/me", r.authMiddleware.Authenticate(), r.userController.GetProfile)
			users.PUT("/me", r.authMiddleware.Authenticate(), r.userController.UpdateProfile)
			users.GET("/me/stats", r.authMiddleware.Authenticate(), r.userController.GetStats)
			users.PUT("/me/school", r.authMiddleware.Authenticate(), r.userController.BindSchool)
			users.GET("/:id", r.userController.GetPublicProfile)
			users.GET("/:id/books", r.bookController.ListSellerBooks)
			users.GET("/:id/reviews", r.reviewController.ListSellerReviews)
		}

		schools := v1.Group("/schools")
		{
			schools.GET("", r.schoolController.ListSchools)
			schools.GET("/nearby", r.schoolController.NearbySchools)
			schools.GET("/:id", r.schoolController.GetSchool)
		}

		books := v1.Group("/books")
		{
			books.GET("", r.bookController.ListBooks)
			books.GET("/categories", r.bookController.ListCategories)
			books.GET("/conditions", r.bookController.ListConditions)
			books.GET("/nearby", r.bookController.NearbyBooks)
			books.GET("/mine", r.authMiddleware.Authenticate(), r.bookController.ListMyBooks)
			books.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.bookController.GetBook)
			books.GET("/:id/reviews", r.reviewController.ListProductReviews)
			books.POST("", r.authMiddleware.Authenticate(), r.bookController.CreateBook)
			books.PUT("/:id", r.authMiddleware.Authenticate(), r.bookController.UpdateBook)
		}

		// Same handler as /books; kept as its own path so search clients
		// do not depend on the listing route.
		v1.GET("/search/books", r.bookController.ListBooks)

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.PUT("/:id/status", r.orderController.UpdateStatus)
			orders.GET("/:id/logistics", r.logisticsController.TrackOrder)
		}

		reviews := v1.Group("/reviews")
		reviews.Use(r.authMiddleware.Authenticate())
		{
			reviews.POST("", r.reviewController.CreateReview)
		}

		v1.GET("/recommendations",
			r.authMiddleware.Authenticate(),
			r.recommendController.Recommend,
		)

		v1.GET("/logistics/carriers", r.logisticsController.ListCarriers)

		im := v1.Group("/im")
		im.Use(r.authMiddleware.Authenticate())
		{
			im.GET("/credential", r.imController.GetCredential)
			im.GET("/conversations/:peer_id", r.imController.OpenConversation)
		}

		upload := v1.Group("/uploads")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/audit/books", r.adminController.ListPendingBooks)
			admin.GET("/audit/posts", r.adminController.ListPendingPosts)
			admin.POST("/audit", r.adminController.Audit)
			admin.GET("/audit/logs", r.adminController.ListLogs)
			admin.GET("/audit/logs/export", r.adminController.ExportLogs)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
