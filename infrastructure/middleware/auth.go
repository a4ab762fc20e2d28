package middlewares

import (
	"facegate.io/application/interfaces"
	"facegate.io/application/middlewares"
	"github.com/gin-gonic/gin"
)

// UserAuthenticationMiddleware augments the context built by the
// user-agent middleware, so it must run after it.
func UserAuthenticationMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		appContext, next := middlewares.UserAuthenticationMiddleware(appContext)
		if next {
			ctx.Set("AppContext", appContext)
			ctx.Next()
		}
	}
}
