package middleware

import (
	"fmt"
	"net/http"

	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
)

// Recover converts handler panics into 500 responses instead of
// killing the connection.
func Recover(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err := pkgerrors.Wrap(fmt.Errorf("%v", rec), pkgerrors.CodeInternal, "handler panicked")
					responses.WriteError(r.Context(), w, logg, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
