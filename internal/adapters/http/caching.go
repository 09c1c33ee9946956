package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cachePolicy is the default Cache-Control for GET responses under prefix.
type cachePolicy struct {
	prefix string
	exact  bool
	value  string
}

// Map data is live and pages are per session, so only probes and docs are
// cacheable.
var cachePolicies = []cachePolicy{
	{prefix: "/", exact: true, value: "no-store"},
	{prefix: "/v1/elements", value: "no-store"},
	{prefix: "/v1/health", value: "public, max-age=10"},
	{prefix: "/v1/ready", value: "public, max-age=10"},
	{prefix: "/metrics", value: "no-cache"},
	{prefix: "/docs", value: "public, max-age=3600"},
}

func policyFor(path string) string {
	for _, p := range cachePolicies {
		if (p.exact && path == p.prefix) || (!p.exact && strings.HasPrefix(path, p.prefix)) {
			return p.value
		}
	}
	return ""
}

// CachingMiddleware applies the default Cache-Control of the path to GET
// responses that did not set one, then tags cacheable 200s with a weak ETag
// and answers a matching If-None-Match with 304.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil || c.Method() != fiber.MethodGet {
			return err
		}

		resp := c.Response()
		cc := string(resp.Header.Peek(fiber.HeaderCacheControl))
		if cc == "" {
			if cc = policyFor(c.Path()); cc != "" {
				c.Set(fiber.HeaderCacheControl, cc)
			}
		}

		if resp.StatusCode() != fiber.StatusOK || cc == "no-store" || len(resp.Body()) == 0 {
			return nil
		}
		sum := sha256.Sum256(resp.Body())
		etag := `W/"` + hex.EncodeToString(sum[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)
		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			c.Status(fiber.StatusNotModified)
			resp.ResetBody()
		}
		return nil
	}
}
