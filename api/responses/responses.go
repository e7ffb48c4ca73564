package responses

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

type successBody struct {
	Data any              `json:"data"`
	Meta *pagination.Meta `json:"meta,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    pkgerrors.Code `json:"code"`
	Message string         `json:"message"`
	Details any            `json:"details,omitempty"`
}

// WriteJSON writes data under the standard envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	write(w, status, successBody{Data: data})
}

// WritePage writes a paginated collection with its meta block.
func WritePage(w http.ResponseWriter, data any, page pagination.Params, total int64) {
	meta := pagination.NewMeta(page, total)
	write(w, http.StatusOK, successBody{Data: data, Meta: &meta})
}

// WriteError maps a typed error onto its HTTP status. Untyped errors
// become 500s; server-side failures are logged with their full chain.
func WriteError(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, err error) {
	code := pkgerrors.CodeInternal
	message := ""
	var details any

	var typed *pkgerrors.Error
	if pkgerrors.As(err, &typed) {
		code = typed.Code
		message = typed.Message
		if typed.Details != nil {
			details = typed.Details
		}
	}

	meta := pkgerrors.MetadataFor(code)
	if message == "" {
		message = meta.PublicMessage
	}
	if !meta.DetailsAllowed {
		details = nil
	}

	if meta.HTTPStatus >= http.StatusInternalServerError && logg != nil {
		logg.Error(logg.WithField(ctx, "error_dump", pkgerrors.Dump(err)), "request failed", err)
	}

	write(w, meta.HTTPStatus, errorBody{Error: errorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
