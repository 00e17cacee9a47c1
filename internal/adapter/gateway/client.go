// Package gateway queries the payment gateway for the state of an invoice.
package gateway

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/polkiloo/pdfshop/internal/domain/model"
	"github.com/polkiloo/pdfshop/internal/pkg/signature"
)

// ErrInvoiceNotFound indicates the gateway has no record of the invoice.
var ErrInvoiceNotFound = errors.New("invoice not found at gateway")

// result code reported for an unknown invoice.
const resultInvoiceNotFound = 3

// TooManyRequestsError represents rate limiting signal from the gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client exposes operations to query the gateway.
type Client interface {
	State(ctx context.Context, invoiceID int64) (*model.GatewayState, error)
}

// HTTPClient implements Client via the OpStateExt web service.
type HTTPClient struct {
	endpoint      *url.URL
	merchantLogin string
	password2     string
	httpClient    *http.Client
	logger        *slog.Logger
}

// stateResponse mirrors the XML payload of OpStateExt.
type stateResponse struct {
	XMLName xml.Name `xml:"OperationStateResponse"`
	Result  struct {
		Code        int    `xml:"Code"`
		Description string `xml:"Description"`
	} `xml:"Result"`
	State struct {
		Code int `xml:"Code"`
	} `xml:"State"`
}

// NewHTTPClient creates gateway client with default timeout.
func NewHTTPClient(endpoint, merchantLogin, password2 string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		endpoint:      parsed,
		merchantLogin: merchantLogin,
		password2:     password2,
		logger:        logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// State asks the gateway what it knows about the invoice.
func (c *HTTPClient) State(ctx context.Context, invoiceID int64) (*model.GatewayState, error) {
	endpoint := *c.endpoint
	query := endpoint.Query()
	query.Set("MerchantLogin", c.merchantLogin)
	query.Set("InvoiceID", strconv.FormatInt(invoiceID, 10))
	query.Set("Signature", signature.SignState(c.merchantLogin, invoiceID, c.password2))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var data stateResponse
		if err := xml.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("decode gateway state: %w", err)
		}
		if data.Result.Code == resultInvoiceNotFound {
			return nil, ErrInvoiceNotFound
		}
		return &model.GatewayState{
			InvoiceID:   invoiceID,
			ResultCode:  data.Result.Code,
			StateCode:   data.State.Code,
			Description: data.Result.Description,
		}, nil
	case http.StatusTooManyRequests:
		return nil, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway state request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("gateway error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
