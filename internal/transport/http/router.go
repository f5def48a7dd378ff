package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/handlers"
	authmw "github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/middleware/auth"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
)

type Deps struct {
	AuthHandler      *handlers.AuthHandler
	DoctorHandler    *handlers.DoctorHandler
	SpecialtyHandler *handlers.SpecialtyHandler
	Guard            *authmw.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh-token", d.AuthHandler.Refresh)
	auth.POST("/change-password", d.AuthHandler.ChangePassword)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.POST("/verify-email", d.AuthHandler.VerifyEmail)
	auth.POST("/forget-password", d.AuthHandler.ForgetPassword)
	auth.POST("/reset-password", d.AuthHandler.ResetPassword)
	auth.GET("/me", d.AuthHandler.GetMe, d.Guard.CheckAuth())

	specialties := v1.Group("/specialties")
	specialties.GET("", d.SpecialtyHandler.GetSpecialties)
	specialties.GET("/:id", d.SpecialtyHandler.GetSpecialty)
	specialties.POST("", d.SpecialtyHandler.CreateSpecialty, d.Guard.CheckAuth(models.RoleAdmin))
	specialties.PATCH("/:id", d.SpecialtyHandler.UpdateSpecialty, d.Guard.CheckAuth(models.RoleAdmin))
	specialties.DELETE("/:id", d.SpecialtyHandler.DeleteSpecialty, d.Guard.CheckAuth(models.RoleAdmin))

	doctors := v1.Group("/doctors")
	doctors.GET("", d.DoctorHandler.GetDoctors)
	doctors.GET("/search", d.DoctorHandler.SearchDoctors)
	doctors.GET("/:id", d.DoctorHandler.GetDoctor)
	doctors.POST("", d.DoctorHandler.CreateDoctor, d.Guard.CheckAuth(models.RoleAdmin))
	doctors.PATCH("/:id", d.DoctorHandler.UpdateDoctor, d.Guard.CheckAuth(models.RoleAdmin))
	doctors.DELETE("/:id", d.DoctorHandler.DeleteDoctor, d.Guard.CheckAuth(models.RoleAdmin))
}
