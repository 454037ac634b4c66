package payos

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ms-orders/internal/config"
	"ms-orders/internal/logger"
)

// Client talks to the PayOS payment-requests API.
type Client struct {
	client      *http.Client
	baseURL     string
	clientID    string
	apiKey      string
	checksumKey string
	logger      *logger.Logger
}

func NewClient(cfg config.PaymentConfig, client *http.Client, log *logger.Logger) *Client {
	return &Client{
		client:      client,
		baseURL:     strings.TrimRight(cfg.PayOSBaseURL, "/"),
		clientID:    cfg.PayOSClientID,
		apiKey:      cfg.PayOSAPIKey,
		checksumKey: cfg.PayOSChecksumKey,
		logger:      log,
	}
}

type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type CreateLinkRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
	ReturnURL   string `json:"returnUrl"`
	CancelURL   string `json:"cancelUrl"`
	ExpiredAt   int64  `json:"expiredAt"`
	Signature   string `json:"signature"`
}

type CreateLinkResponse struct {
	PaymentLinkID string `json:"paymentLinkId"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
	Status        string `json:"status"`
}

type apiEnvelope struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

// sign computes the HMAC-SHA256 the gateway expects over the sorted
// key=value fields of the request.
func (c *Client) sign(req CreateLinkRequest) string {
	payload := fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		req.Amount, req.CancelURL, req.Description, req.OrderCode, req.ReturnURL)
	mac := hmac.New(sha256.New, []byte(c.checksumKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreatePaymentLink requests a hosted checkout link for one order.
func (c *Client) CreatePaymentLink(req CreateLinkRequest) (*CreateLinkResponse, error) {
	req.Signature = c.sign(req)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment request: %w", err)
	}

	url := c.baseURL + "/v2/payment-requests"
	c.logger.Debug("PAYOS", fmt.Sprintf("Creating payment link for orderCode %d", req.OrderCode))

	httpReq, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}
	httpReq.Header.Set("x-client-id", c.clientID)
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("PAYOS", fmt.Sprintf("Payment gateway error: %v", err))
		return nil, fmt.Errorf("payment gateway error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Error("PAYOS", fmt.Sprintf("Failed to close gateway response body: %v", err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("PAYOS", fmt.Sprintf("Payment gateway returned status: %d", resp.StatusCode))
		return nil, fmt.Errorf("payment gateway returned status: %d", resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if envelope.Code != "00" {
		c.logger.Error("PAYOS", fmt.Sprintf("Payment gateway rejected request: %s %s", envelope.Code, envelope.Desc))
		return nil, fmt.Errorf("payment gateway rejected request: %s", envelope.Desc)
	}

	var link CreateLinkResponse
	if err := json.Unmarshal(envelope.Data, &link); err != nil {
		return nil, fmt.Errorf("failed to decode payment link: %w", err)
	}

	c.logger.Info("PAYOS", fmt.Sprintf("Payment link %s created for orderCode %d", link.PaymentLinkID, req.OrderCode))
	return &link, nil
}
