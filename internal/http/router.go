// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"swiftcab/internal/http/handlers"
	"swiftcab/internal/http/middleware"
	"swiftcab/internal/modules/account"
	"swiftcab/internal/modules/auth"
	"swiftcab/internal/modules/ride"
	"swiftcab/internal/realtime"
)

type RouterDeps struct {
	Accounts *account.Service
	Rides    *ride.Service
	Guard    *auth.Guard
	Gateway  *realtime.Gateway
	Logger   *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(),
	)

	accountHandler := handlers.NewAccountHandler(deps.Accounts, deps.Guard)
	authed := middleware.Auth(deps.Guard)

	for _, g := range []struct {
		prefix string
		role   account.Role
	}{
		{"/riders", account.RoleRider},
		{"/captains", account.RoleCaptain},
	} {
		grp := r.Group(g.prefix)
		grp.POST("/register", accountHandler.Register(g.role))
		grp.POST("/verify-email-otp", accountHandler.VerifyEmailOTP)
		grp.POST("/verify-mobile-otp", accountHandler.VerifyMobileOTP)
		grp.POST("/login", accountHandler.Login(g.role))
		grp.GET("/logout", authed, accountHandler.Logout)
		grp.GET("/profile", authed, middleware.RequireRole(g.role), accountHandler.Profile)
	}

	rideHandler := handlers.NewRideHandler(deps.Rides)
	rides := r.Group("/rides", authed)
	rides.POST("/create", middleware.RequireRole(account.RoleRider), rideHandler.Create)
	rides.GET("/get-fare", rideHandler.GetFare)
	rides.GET("/my-rides", middleware.RequireRole(account.RoleRider), rideHandler.ListMine)
	rides.POST("/confirm", middleware.RequireRole(account.RoleCaptain), rideHandler.Confirm)
	rides.GET("/start-ride", middleware.RequireRole(account.RoleCaptain), rideHandler.Start)
	rides.POST("/end-ride", middleware.RequireRole(account.RoleCaptain), rideHandler.End)
	rides.POST("/cancel", middleware.RequireRole(account.RoleAdmin), rideHandler.Cancel)
	rides.POST("/reject", middleware.RequireRole(account.RoleAdmin), rideHandler.Reject)
	rides.GET("/:id", rideHandler.Get)

	wsHandler := handlers.NewWSHandler(deps.Gateway, deps.Logger)
	r.GET("/ws", wsHandler.Handle)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
