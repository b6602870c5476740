package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/varity-labs/varity-app-store/models"
)

// AccountHeader carries the authenticated caller, set by the gateway in front of the service
const AccountHeader = "X-Account"

const callerKey = "caller"

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// AccountMiddleware resolves the caller once per request
func AccountMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(callerKey, models.ParseAccount(c.GetHeader(AccountHeader)))
		c.Next()
	}
}

// CallerFrom returns the caller resolved by AccountMiddleware, zero when absent
func CallerFrom(c *gin.Context) models.Account {
	if v, ok := c.Get(callerKey); ok {
		if acct, ok := v.(models.Account); ok {
			return acct
		}
	}
	return models.ParseAccount(c.GetHeader(AccountHeader))
}

func parseUintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
