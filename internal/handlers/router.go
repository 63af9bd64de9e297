package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/placement-tracker/internal/middleware"
	"github.com/rs/zerolog"
)

type RouterOptions struct {
	AllowedOrigins   []string
	RequestTimeout   time.Duration
	Limiter          middleware.Limiter
	ExportRateLimit  int
	ExportRateWindow time.Duration
	Logger           zerolog.Logger
}

// NewRouter builds the gin engine with every route under /api/v1.
func NewRouter(jobs *JobHandler, applicants *ApplicantHandler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Logger), middleware.Timeout(opts.RequestTimeout))

	config := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 || (len(opts.AllowedOrigins) == 1 && opts.AllowedOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = opts.AllowedOrigins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.ExposeHeaders = []string{"Content-Disposition"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		// Job Routes
		api.POST("/jobs", jobs.CreateJob)
		api.GET("/jobs", jobs.ListJobs)
		api.GET("/jobs/:id", jobs.GetJob)
		api.PUT("/jobs/:id", jobs.UpdateJob)
		api.DELETE("/jobs/:id", jobs.DeleteJob)

		// Eligibility Routes
		api.GET("/jobs/:id/eligible-students", jobs.EligibleStudents)
		api.GET("/jobs/:id/eligible-students/download",
			middleware.RateLimit(opts.Limiter, middleware.ClientIPKey("export"), opts.ExportRateLimit, opts.ExportRateWindow),
			jobs.DownloadEligible)
		api.POST("/jobs/:id/eligible-students/attach", jobs.AttachEligible)

		// Applicant Routes
		api.GET("/jobs/:id/applicants", applicants.List)
		api.POST("/jobs/:id/applicants", applicants.Attach)
		api.PATCH("/jobs/:id/applicants/:studentId/status", applicants.UpdateStatus)
	}
	return r
}
