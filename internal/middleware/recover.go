package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Recover is the terminal error handler: it turns a handler panic into a 500
// JSON response. The panic message is exposed only when showDetail is set.
func Recover(log *zap.Logger, showDetail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				err, ok := v.(error)
				if !ok {
					err = errors.New(fmt.Sprint(v))
				}
				log.Error("Unhandled application error",
					zap.String("error", err.Error()),
					zap.Stack("stack"),
					zap.String("method", r.Method),
					zap.String("url", r.URL.RequestURI()),
					zap.String("ip", ClientIP(r)),
				)

				msg := "Something went wrong"
				if showDetail {
					msg = err.Error()
				}
				RespondError(w, http.StatusInternalServerError, "Internal Server Error", msg)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
