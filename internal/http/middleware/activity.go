package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/twokvolts/internal/activity"
)

// Activity records a last-seen timestamp for every authenticated request.
// Must run after Auth. Failures are logged and never block the request.
func Activity(store activity.Store, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, ok := MustPrincipal(c); ok {
			if err := store.Touch(c.Request.Context(), principal.ConsumerID, time.Now()); err != nil {
				log.Warn().Err(err).Msg("activity touch failed")
			}
		}
		c.Next()
	}
}
