package api

import (
	"github.com/Domenick1991/roombooking/internal/metrics"
	"github.com/Domenick1991/roombooking/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps wires the handlers. Limiter may be nil to disable throttling.
type RouterDeps struct {
	Rooms              *RoomHandler
	Bookings           *BookingHandler
	Auth               *AuthHandler
	Tokens             TokenParser
	Limiter            ratelimit.Limiter
	BookingPolicy      ratelimit.Policy
	RegistrationPolicy ratelimit.Policy
	Log                zerolog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(deps.Log), metrics.Middleware())
	Register(router.Group("/api/v1"), deps)
	return router
}

// Register mounts the versioned API on group.
func Register(group *gin.RouterGroup, deps RouterDeps) {
	throttle := func(policy ratelimit.Policy) gin.HandlerFunc {
		if deps.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return RateLimit(deps.Limiter, policy)
	}
	authenticated := Authenticate(deps.Tokens)

	group.POST("/user/registration", throttle(deps.RegistrationPolicy), deps.Auth.register)
	group.POST("/token", deps.Auth.token)

	group.GET("/rooms", deps.Rooms.list)
	group.GET("/rooms/free", deps.Rooms.free)
	group.GET("/rooms/:id", deps.Rooms.get)

	admin := group.Group("", authenticated, RequireAdmin())
	admin.POST("/rooms", deps.Rooms.create)
	admin.PATCH("/rooms/:id", deps.Rooms.update)
	admin.DELETE("/rooms/:id", deps.Rooms.delete)
	admin.GET("/bookings", deps.Bookings.listAll)

	user := group.Group("/user/booking", authenticated)
	user.POST("", throttle(deps.BookingPolicy), deps.Bookings.create)
	user.GET("", deps.Bookings.listMine)
	user.GET("/:id", deps.Bookings.get)
	user.DELETE("/:id", deps.Bookings.delete)
}
