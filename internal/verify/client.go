// Package verify is the client for the external screenshot-verification
// gateway. The gateway reads an uploaded payment confirmation image and
// answers with the court, date and time it detected, or a rejection.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Request carries the image and the booking details the gateway should
// match it against.
type Request struct {
	Image         []byte
	ImageName     string
	ExpectedCourt string
	ExpectedDate  string
	ExpectedTime  string
}

// Result is the gateway's structured verdict. Any non-verified answer, and
// any transport failure, resolves to rejected; Unavailable marks the latter
// so the caller can offer a retry.
type Result struct {
	Status      model.VerificationStatus
	Data        model.VerificationData
	Unavailable bool
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type gatewayResponse struct {
	Status        string `json:"status"`
	DetectedCourt string `json:"detected_court"`
	DetectedDate  string `json:"detected_date"`
	DetectedTime  string `json:"detected_time"`
}

// Verify submits the image and returns the verdict. Transient transport
// errors are retried with backoff; a gateway that stays unreachable yields a
// rejected result flagged Unavailable, never an error that blocks the
// booking flow.
func (c *Client) Verify(ctx context.Context, req Request) Result {
	var resp gatewayResponse

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := c.post(ctx, req)
		if err != nil {
			return retry.RetryableError(err)
		}
		resp = *r
		return nil
	})

	if err != nil {
		c.logger.Warn("Verification gateway unavailable", zap.Error(err))
		return Result{
			Status:      model.VerificationRejected,
			Data:        model.VerificationData{GatewayUnavailable: true},
			Unavailable: true,
		}
	}

	data := model.VerificationData{
		DetectedCourt: resp.DetectedCourt,
		DetectedDate:  resp.DetectedDate,
		DetectedTime:  resp.DetectedTime,
	}

	if resp.Status != string(model.VerificationVerified) {
		return Result{Status: model.VerificationRejected, Data: data}
	}

	return Result{Status: model.VerificationVerified, Data: data}
}

func (c *Client) post(ctx context.Context, req Request) (*gatewayResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", req.ImageName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	fields := map[string]string{
		"expected_court": req.ExpectedCourt,
		"expected_date":  req.ExpectedDate,
		"expected_time":  req.ExpectedTime,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gateway: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, httpResp.Body)
		return nil, fmt.Errorf("gateway returned %d", httpResp.StatusCode)
	}

	var resp gatewayResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	return &resp, nil
}
