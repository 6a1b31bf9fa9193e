package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkmesh-ai/linkmesh/app/core"
	"github.com/linkmesh-ai/linkmesh/app/response"
	"github.com/linkmesh-ai/linkmesh/pkg/errors"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

const (
	API_KEY_HEADER = "X-API-Key"

	SITE_CONTEXT_KEY = "site"
	SITE_ID_KEY      = "site_id"
)

// Authorization resolves the api key to a site config before any
// processing. Unknown keys are rejected with 401.
func Authorization(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(API_KEY_HEADER)
		if apiKey == "" {
			response.APIError(c, errors.New("middleware.Authorization.header", "missing api key", nil).Code(http.StatusUnauthorized))
			return
		}

		site, ok := core.Cfg().SiteByAPIKey(apiKey)
		if !ok {
			response.APIError(c, errors.New("middleware.Authorization.lookup", "unknown api key", nil).Code(http.StatusUnauthorized))
			return
		}

		c.Set(SITE_CONTEXT_KEY, site)
		c.Set(SITE_ID_KEY, site.SiteID)
	}
}

// InjectSite returns the site config resolved by Authorization.
func InjectSite(c *gin.Context) *types.SiteConfig {
	return c.MustGet(SITE_CONTEXT_KEY).(*types.SiteConfig)
}

// VerifySiteID rejects requests whose body site_id does not match the
// authenticated site.
func VerifySiteID(c *gin.Context, bodySiteID string) error {
	site := InjectSite(c)
	if bodySiteID != "" && bodySiteID != site.SiteID {
		return errors.New("middleware.VerifySiteID", "site_id does not match api key", nil).Code(http.StatusForbidden)
	}
	return nil
}

// UseLimit applies the per-site rate limit resolved from the site config.
func UseLimit(appCore *core.Core, operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		site := InjectSite(c)
		key := operation + ":" + site.SiteID
		if !appCore.UseLimiter(key, site.RateLimit).Allow() {
			response.APIError(c, errors.New("middleware.limiter", "too many requests", nil).Code(http.StatusTooManyRequests))
		}
	}
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}
