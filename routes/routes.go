package routes

import (
	"research-proposal-api/controllers"
	"research-proposal-api/middleware"
	"research-proposal-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Research Proposal API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Directory endpoints (all authenticated users)
			protected.GET("/users", controllers.GetUsers)
			protected.GET("/dosen", controllers.GetDosen)
			protected.GET("/students", controllers.GetStudents)
			protected.GET("/reviewers", controllers.GetReviewers)
			protected.GET("/faculties", controllers.GetFaculties)

			// Account and faculty administration
			admin := protected.Group("")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/users", controllers.CreateUser)
				admin.PUT("/users/:id", controllers.UpdateUser)
				admin.DELETE("/users/:id", controllers.DeleteUser)

				admin.POST("/faculties", controllers.CreateFaculty)
				admin.PUT("/faculties/:id", controllers.UpdateFaculty)
				admin.DELETE("/faculties/:id", controllers.DeleteFaculty)
			}

			// Documents
			protected.GET("/documents/download/:file_id", controllers.DownloadDocument)

			// Proposals
			proposals := protected.Group("/proposals")
			{
				proposals.GET("", controllers.GetProposals)
				proposals.GET("/statuses", controllers.GetProposalStatuses)
				proposals.GET("/:id", controllers.GetProposal)
				proposals.GET("/:id/history", controllers.GetProposalHistory)

				// Only dosen can author proposals
				proposals.POST("", middleware.RequireRole(models.RoleDosen), controllers.CreateProposal)
				proposals.POST("/upload-file", middleware.RequireRole(models.RoleDosen), controllers.UploadProposalFile)
				proposals.POST("/:id/submit", middleware.RequireRole(models.RoleDosen), controllers.SubmitProposal)
				proposals.PUT("/:id", middleware.RequireRole(models.RoleDosen, models.RoleAdmin), controllers.UpdateProposal)
				proposals.DELETE("/:id", middleware.RequireRole(models.RoleDosen, models.RoleAdmin), controllers.DeleteProposal)

				// Membership confirmation
				proposals.POST("/:id/approve-member", controllers.ApproveMembership)
				proposals.POST("/:id/reject-member", controllers.RejectMembership)

				// Approval chain
				proposals.POST("/:id/approve-faculty-head", middleware.RequireRole(models.RoleFacultyHead), controllers.ApproveAsFacultyHead)
				proposals.POST("/:id/approve-dean", middleware.RequireRole(models.RoleDekan), controllers.ApproveAsDean)
				proposals.POST("/:id/approve-lppm", middleware.RequireRole(models.RoleKetuaLPPM), controllers.ApproveAsLPPM)
			}

			// Proposal review
			review := protected.Group("/proposal-review")
			{
				review.GET("/assigned", middleware.RequireRole(models.RoleReviewer), controllers.GetReviewerProposals)
				review.GET("/criteria", controllers.GetEvaluationCriteria)
				review.GET("/:id/summary", controllers.GetProposalEvaluationSummary)

				review.POST("/:id/add-reviewer", middleware.RequireRole(models.RoleFacultyHead), controllers.AssignReviewers)
				review.POST("/:id/replace-reviewer", middleware.RequireRole(models.RoleFacultyHead), controllers.ReplaceReviewer)
				review.POST("/:id/accept", middleware.RequireRole(models.RoleReviewer), controllers.ReviewerAccept)
				review.POST("/:id/reject", middleware.RequireRole(models.RoleReviewer), controllers.ReviewerReject)
				review.POST("/:id/form-evaluation", middleware.RequireRole(models.RoleReviewer), controllers.SubmitEvaluation)
			}

			// Progress report monitoring
			monitoring := protected.Group("/proposal-monitoring")
			{
				monitoring.POST("/save-or-upload", middleware.RequireRole(models.RoleDosen), controllers.SubmitProgressReport)
				monitoring.POST("/approve-ketua-fakultas/:id", middleware.RequireRole(models.RoleFacultyHead), controllers.ApproveProgressFacultyHead)
				monitoring.POST("/approve-dekan/:id", middleware.RequireRole(models.RoleDekan), controllers.ApproveProgressDean)
				monitoring.POST("/approve-lppm/:id", middleware.RequireRole(models.RoleKetuaLPPM), controllers.ApproveProgressLPPM)
				monitoring.POST("/upload-sk-pemantauan/:id", middleware.RequireRole(models.RoleKetuaLPPM), controllers.UploadMonitoringDecree)

				monitoring.POST("/final-report/:id", middleware.RequireRole(models.RoleDosen), controllers.SubmitFinalReport)
				monitoring.POST("/approve-final-dekan/:id", middleware.RequireRole(models.RoleDekan), controllers.ApproveFinalDean)
				monitoring.POST("/approve-final-lppm/:id", middleware.RequireRole(models.RoleKetuaLPPM), controllers.ApproveFinalLPPM)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.POST("/mark-read/:notification_id", controllers.MarkNotificationRead)
				notifications.POST("/mark-all-read", controllers.MarkAllNotificationsRead)
			}
		}
	}
}
