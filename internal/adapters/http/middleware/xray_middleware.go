package middleware

import (
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

// XRayMiddleware opens a segment per request, annotated with the route and the session.
// Paths in skip (such as the metrics scrape) are not traced.
func XRayMiddleware(segmentName string, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipped[c.Request().URL.Path] {
				return next(c)
			}
			ctx, seg := xray.BeginSegment(c.Request().Context(), segmentName)
			req := c.Request().Clone(ctx)
			c.SetRequest(req)
			err := next(c)
			_ = seg.AddAnnotation("route", c.Path())
			if id, ok := c.Get("session_id").(string); ok && id != "" {
				_ = seg.AddAnnotation("session_id", id)
			}
			seg.Close(err)
			return err
		}
	}
}
