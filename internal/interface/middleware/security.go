package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// SecurityHeaders sets the usual hardening headers. HSTS is only sent over
// HTTPS and only when https is true.
func SecurityHeaders(https bool) gin.HandlerFunc {
	cfg := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		IENoOpen:              true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; base-uri 'self'; frame-ancestors 'none'; object-src 'none'",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	}
	if https {
		cfg.STSSeconds = 180 * 24 * 60 * 60
		cfg.STSIncludeSubdomains = true
	}
	return secure.New(cfg)
}

// Compression gzips responses for clients that accept it. It must wrap the
// error handler so error envelopes are compressed too.
func Compression() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression)
}
