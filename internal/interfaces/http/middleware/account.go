package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

const (
	// AccountHeader carries the caller account, set by the authenticating
	// proxy in front of the daemon.
	AccountHeader = "X-Account"

	accountKey = "account"
)

// RequireAccount rejects the requests without a valid caller account and
// stores the account in the request context otherwise.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AccountHeader)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": AccountHeader + " header required",
			})
			return
		}
		account := domain.Account(header)
		if err := account.Validate(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.Set(accountKey, account)
		c.Next()
	}
}

// Account returns the caller account stored by RequireAccount.
func Account(c *gin.Context) domain.Account {
	account, _ := c.Get(accountKey)
	a, _ := account.(domain.Account)
	return a
}
