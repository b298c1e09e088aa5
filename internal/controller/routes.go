package controller

import "github.com/labstack/echo/v4"

// RegisterRoutes wires the public and protected route groups. The rate
// limiter only guards the credential endpoints; the bearer middleware guards
// everything that needs an authenticated user.
func RegisterRoutes(g *echo.Group, c *Controller, bearerAuth, rateLimit echo.MiddlewareFunc) {
	g.GET("/ping", c.CheckServer)

	auth := g.Group("/auth")
	auth.POST("/signup", c.SignUp, rateLimit)
	auth.POST("/signin", c.SignIn, rateLimit)
	auth.POST("/refresh", c.Refresh)
	auth.POST("/logout", c.Logout, bearerAuth)
	auth.GET("/me", c.Me, bearerAuth)

	files := g.Group("/files", bearerAuth)
	files.POST("", c.UploadFile)
	files.GET("", c.ListFiles)
	files.GET("/:id", c.GetFile)
	files.PUT("/:id", c.UpdateFile)
	files.GET("/:id/download", c.DownloadFile)
	files.DELETE("/:id", c.DeleteFile)
}
