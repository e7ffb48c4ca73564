package controllers

import (
	"io"
	"net/http"

	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/settlement"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/paystack"
)

// maxWebhookBytes bounds the raw body we hand to signature verification.
const maxWebhookBytes = 1 << 20

// WebhookController receives gateway event deliveries.
type WebhookController struct {
	settlement settlement.Service
	logg       *logger.Logger
}

func NewWebhookController(settlementSvc settlement.Service, logg *logger.Logger) *WebhookController {
	return &WebhookController{settlement: settlementSvc, logg: logg}
}

// Paystack handles POSTed gateway events. The signature is computed over
// the raw body, so the body must be read before any decoding.
func (c *WebhookController) Paystack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		responses.WriteError(ctx, w, c.logg,
			pkgerrors.Wrap(err, pkgerrors.CodeValidation, "failed to read webhook body"))
		return
	}

	signature := r.Header.Get(paystack.SignatureHeader)
	if err := c.settlement.HandleWebhook(ctx, body, signature); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}

	// The gateway retries anything that is not a 200.
	responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
