package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/varity-labs/varity-app-store/controller/respond"
)

// LimiterMiddleware throttles per caller and client ip. period: "S", "M", "H" or "D".
func LimiterMiddleware(limit int, period string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(fmt.Sprintf("%d-%s", limit, period))
	if err != nil {
		return nil, err
	}
	return mgin.NewMiddleware(limiter.New(memory.NewStore(), rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			respond.Error(c, respond.CodeRateLimited, http.StatusText(http.StatusTooManyRequests))
		}),
		mgin.WithKeyGetter(func(c *gin.Context) string {
			return CallerFrom(c).String() + "," + c.ClientIP()
		}),
	), nil
}
