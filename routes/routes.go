package routes

import (
	"voucher-redemption-api/controllers"
	"voucher-redemption-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(router *gin.Engine) {
	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes (the applicant flow needs no account)
		public := v1.Group("")
		{
			// Staff authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Voucher Redemption API is running",
				})
			})

			// Applicant flow
			public.POST("/voucher-codes/check", controllers.CheckVoucherCode)
			public.GET("/draft", controllers.GetDraft)
			public.PUT("/draft", controllers.UpdateDraft)
			public.POST("/draft/verify-address", controllers.VerifyDraftAddress)
			public.POST("/applications", controllers.SubmitApplication)
		}

		// Staff routes (require authentication)
		staff := v1.Group("")
		staff.Use(middleware.AuthMiddleware())
		{
			staff.GET("/profile", controllers.GetProfile)
			staff.PUT("/change-password", controllers.ChangePassword)

			// Application review
			applications := staff.Group("/admin/applications")
			{
				applications.GET("", controllers.ListApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.PUT("/statuses", controllers.UpdateApplicationStatuses)
				applications.POST("/dedup-sweep", controllers.RunDedupSweep)
			}

			// CSV exports
			staff.GET("/admin/reports/:status", controllers.DownloadStatusReport)
			staff.GET("/admin/payments", controllers.DownloadPaymentsCSV)

			// Preapproved addresses
			preapproved := staff.Group("/admin/preapproved-addresses")
			{
				preapproved.GET("", controllers.ListPreapprovedAddresses)
				preapproved.POST("/import", controllers.ImportPreapprovedAddresses)
			}

			// Voucher code ledger (superuser only)
			vouchers := staff.Group("/admin/voucher-codes")
			vouchers.Use(middleware.RequireSuperuser())
			{
				vouchers.GET("/batches", controllers.ListVoucherCodeBatches)
				vouchers.POST("/generate", controllers.GenerateVoucherCodes)
				vouchers.POST("/import", controllers.ImportVoucherCodes)
				vouchers.POST("/invalidate", controllers.InvalidateVoucherCodes)
				vouchers.POST("/invalidate-campaign", controllers.InvalidateCampaignCodes)
			}
		}
	}
}
