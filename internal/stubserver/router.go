package stubserver

import (
	"github.com/gin-gonic/gin"

	"soin-client/internal/models"
)

// Router wires the stub routes. Paths mirror the real backend exactly;
// the client must not be able to tell them apart.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(rateLimit())

	api := r.Group("/api")
	{
		api.POST("/auth/register", s.register)
		api.POST("/auth/login", s.login)
		api.GET("/uploads/tongue_images/:name", s.serveUpload)

		protected := api.Group("/")
		protected.Use(requireAuth(s.secret, s.store))
		{
			protected.GET("/auth/me", s.me)
			protected.GET("/submissions", s.listSubmissions)
			protected.POST("/submissions", s.createSubmission)

			admin := protected.Group("/admin")
			admin.Use(requireRole(models.RoleAdmin))
			{
				admin.GET("/stats", s.adminStats)
				admin.GET("/pending-doctors", s.pendingDoctors)
				admin.POST("/approve-doctor/:id", s.approveDoctor)
				admin.GET("/export-data", s.exportData)
			}
		}
	}

	return r
}
