package handler

import (
	"github.com/ordermill/storefront/internal/apiserver/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API surface. Catalog reads are public; order
// and account routes need a valid token; back-office routes additionally
// need an admin role row.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	authRequired := middleware.JWTAuthMiddleware(h.jwt)
	adminRequired := middleware.AdminMiddleware(h.logger, h.db)

	api := r.Group("/api")

	api.GET("/health", h.Health)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/signin", h.Signin)
		auth.POST("/reset-request", h.ResetRequest)
		auth.POST("/reset", h.Reset)
		auth.GET("/session", authRequired, h.Session)
		auth.POST("/update", authRequired, h.UpdateCredentials)
	}

	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/categories", h.ListCategories)
	api.GET("/storage/:folder/:name", h.ServeFile)

	// Xero redirects back here after consent; no session exists on this hop
	api.GET("/xero/callback", h.XeroCallback)

	authed := api.Group("", authRequired)
	{
		authed.POST("/query", h.Query)
		authed.GET("/orders", h.ListOrders)
		authed.POST("/orders", h.CreateOrder)
		authed.GET("/orders/:id", h.GetOrder)
		authed.GET("/orders/:id/tracking", h.GetTracking)
		authed.GET("/marketing", h.ListMarketing)
	}

	admin := api.Group("", authRequired, adminRequired)
	{
		admin.POST("/products", h.CreateProduct)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)
		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:id", h.UpdateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)

		admin.POST("/admin/orders", h.AdminCreateOrder)
		admin.PUT("/admin/orders/:id", h.AdminUpdateOrder)
		admin.POST("/orders/:id/tracking", h.UpsertTracking)
		admin.POST("/admin/orders/:id/xero-invoice", h.CreateXeroInvoice)

		admin.GET("/email-settings", h.GetEmailSettings)
		admin.POST("/email-settings", h.SaveEmailSettings)

		admin.GET("/xero/connect", h.XeroConnect)
		admin.GET("/xero/status", h.XeroStatus)

		admin.POST("/storage/product-images", h.UploadProductImage)
		admin.POST("/storage/assets", h.UploadAsset)
		admin.POST("/storage/marketing", h.UploadMarketing)
		admin.DELETE("/marketing/:id", h.DeleteMarketing)

		admin.GET("/admin/users", h.AdminListUsers)
		admin.POST("/admin/users", h.AdminCreateUser)
		admin.PUT("/admin/users/:id", h.AdminUpdateUser)
		admin.DELETE("/admin/users/:id", h.AdminDeleteUser)
	}
}
