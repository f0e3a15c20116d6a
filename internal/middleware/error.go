package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/httputil"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
)

// ErrorHandler logs errors handlers attached with c.Error. Server errors are
// logged at error level with their cause; client errors at debug. If a
// handler attached an error without writing a response, one is written
// here.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle errors if they exist
		if len(c.Errors) == 0 {
			return
		}

		reqLog := log.WithContext(c.Request.Context())
		for _, e := range c.Errors {
			appErr, ok := errors.As(e.Err)
			if ok && appErr.StatusCode() < 500 {
				reqLog.Debug("Request rejected",
					"error", e.Error(),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				continue
			}
			reqLog.Error(e.Err, "Request error",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"client_ip", c.ClientIP(),
			)
		}

		if !c.Writer.Written() {
			httputil.RespondWithError(c, c.Errors.Last().Err)
		}
	}
}
