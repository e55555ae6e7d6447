package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

// TrustProxies sets which peers may speak for the client through
// X-Forwarded-For / X-Real-IP. An empty list trusts no proxy, so the socket
// peer is the client. cloudflare trusts CF-Connecting-IP; enable it only when
// the origin is reachable through Cloudflare alone.
func TrustProxies(engine *gin.Engine, proxies []string, cloudflare bool) error {
	if len(proxies) == 0 {
		proxies = nil
	}
	if err := engine.SetTrustedProxies(proxies); err != nil {
		return err
	}
	engine.TrustedPlatform = ""
	if cloudflare {
		engine.TrustedPlatform = gin.PlatformCloudflare
	}
	return nil
}

// RealIP stores the client IP resolved by Gin under "real_ip". Forwarding
// headers count only when TrustProxies allowed them.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIPKey, c.ClientIP())
		c.Next()
	}
}

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// AllowFunc reports whether a request may skip a guard.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP matches loopback and RFC 1918 / RFC 4193 clients.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// OnlyAllowed rejects requests that allow does not match with 404, hiding the route.
func OnlyAllowed(allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allow == nil || !allow(c) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}
