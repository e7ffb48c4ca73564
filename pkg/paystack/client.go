package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
)

// SignatureHeader carries the gateway's HMAC over the raw webhook body.
const SignatureHeader = "X-Paystack-Signature"

// Client is a thin wrapper over the Paystack transaction API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func New(cfg config.PaystackConfig) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("paystack secret key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("paystack base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		secretKey:  cfg.SecretKey,
	}, nil
}

// InitializeRequest starts a hosted checkout for the given reference.
// Amount is in the currency's minor unit.
type InitializeRequest struct {
	Email       string `json:"email"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
	// Subaccount routes the settled funds to a seller's payout account.
	Subaccount string `json:"subaccount,omitempty"`
}

// InitializeResponse is the authorization handle returned by the gateway.
type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction is the verified state of a gateway transaction.
type Transaction struct {
	ID          int64      `json:"id"`
	Status      string     `json:"status"`
	Reference   string     `json:"reference"`
	AmountMinor int64      `json:"amount"`
	Currency    string     `json:"currency"`
	Channel     string     `json:"channel"`
	PaidAt      *time.Time `json:"paid_at"`
	GatewayResp string     `json:"gateway_response"`
}

// Succeeded reports whether the gateway considers the charge final.
func (t Transaction) Succeeded() bool {
	return t.Status == "success"
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize creates a pending transaction and returns the hosted
// payment page URL the buyer is redirected to.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	if req.Email == "" || req.Reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and reference are required")
	}
	if req.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var out InitializeResponse
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify fetches the authoritative transaction state for a reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference is required")
	}

	var out Transaction
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidSignature checks the webhook HMAC-SHA512 over the raw body.
func (c *Client) ValidSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "encoding paystack request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "building paystack request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "calling paystack")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "reading paystack response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "decoding paystack envelope")
	}

	if resp.StatusCode >= 400 || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("paystack returned status %d", resp.StatusCode)
		}
		code := pkgerrors.CodeDependency
		if resp.StatusCode == http.StatusNotFound {
			code = pkgerrors.CodeNotFound
		}
		return pkgerrors.New(code, msg)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeDependency, "decoding paystack data")
		}
	}
	return nil
}
