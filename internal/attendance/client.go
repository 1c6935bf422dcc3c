package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pharmatch/chatbot/internal/metrics"
	"github.com/pharmatch/chatbot/pkg/tokens"
)

// Outcome classifies an attendance API response into a closed set of
// variants. Handlers switch on the variant, never on raw status codes.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeAlreadyCheckedIn
	OutcomeNothingToCheckOut
	OutcomeTransient
)

// Error codes returned by the attendance API.
const (
	codeAlreadyCheckedIn = "ALREADY_CHECKED_IN"
	codeNotCheckedIn     = "NOT_CHECKED_IN"
)

// Result is the classified outcome of a check-in or check-out call.
// Times and work hours come from the API; this service does not own
// time arithmetic.
type Result struct {
	Outcome      Outcome
	CheckinTime  time.Time
	CheckoutTime time.Time
	WorkHours    float64
	// Message is the API's own error message, surfaced verbatim for
	// NothingToCheckOut.
	Message string
}

// TodayRecord is today's attendance for one user. Either time may be
// absent.
type TodayRecord struct {
	CheckinTime  *time.Time `json:"checkin_time,omitempty"`
	CheckoutTime *time.Time `json:"checkout_time,omitempty"`
}

type checkRequest struct {
	Note string `json:"note,omitempty"`
}

type checkinResponse struct {
	CheckinTime time.Time `json:"checkin_time"`
}

type checkoutResponse struct {
	CheckoutTime time.Time `json:"checkout_time"`
	WorkHours    float64   `json:"work_hours"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client calls the internal attendance API. Every call mints a fresh
// service credential scoped to the target user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	generator  *tokens.TokenGenerator
}

func New(baseURL string, timeout time.Duration, generator *tokens.TokenGenerator) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		generator: generator,
	}
}

// CheckIn records a check-in for userID. note is optional free text.
func (c *Client) CheckIn(ctx context.Context, userID, note string) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.AttendanceCallDuration.WithLabelValues("checkin").Observe(time.Since(start).Seconds())
	}()

	resp, err := c.post(ctx, userID, "/api/v1/attendance/checkin", checkRequest{Note: note})
	if err != nil {
		metrics.AttendanceCallErrors.WithLabelValues("checkin").Inc()
		return &Result{Outcome: OutcomeTransient}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var body checkinResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return &Result{Outcome: OutcomeTransient}, fmt.Errorf("decode checkin response: %w", err)
		}
		return &Result{Outcome: OutcomeSuccess, CheckinTime: body.CheckinTime}, nil
	case resp.StatusCode == http.StatusConflict:
		apiErr := decodeError(resp)
		if apiErr.Error.Code == codeAlreadyCheckedIn {
			return &Result{Outcome: OutcomeAlreadyCheckedIn, Message: apiErr.Error.Message}, nil
		}
		return &Result{Outcome: OutcomeTransient}, fmt.Errorf("checkin rejected: %s", apiErr.Error.Code)
	default:
		metrics.AttendanceCallErrors.WithLabelValues("checkin").Inc()
		return &Result{Outcome: OutcomeTransient}, fmt.Errorf("checkin returned status %d", resp.StatusCode)
	}
}

// CheckOut records a check-out for userID. note is optional free text.
func (c *Client) CheckOut(ctx context.Context, userID, note string) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.AttendanceCallDuration.WithLabelValues("checkout").Observe(time.Since(start).Seconds())
	}()

	resp, err := c.post(ctx, userID, "/api/v1/attendance/checkout", checkRequest{Note: note})
	if err != nil {
		metrics.AttendanceCallErrors.WithLabelValues("checkout").Inc()
		return &Result{Outcome: OutcomeTransient}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var body checkoutResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return &Result{Outcome: OutcomeTransient}, fmt.Errorf("decode checkout response: %w", err)
		}
		return &Result{
			Outcome:      OutcomeSuccess,
			CheckoutTime: body.CheckoutTime,
			WorkHours:    body.WorkHours,
		}, nil
	case resp.StatusCode == http.StatusConflict:
		apiErr := decodeError(resp)
		if apiErr.Error.Code == codeNotCheckedIn {
			return &Result{Outcome: OutcomeNothingToCheckOut, Message: apiErr.Error.Message}, nil
		}
		return &Result{Outcome: OutcomeTransient}, fmt.Errorf("checkout rejected: %s", apiErr.Error.Code)
	default:
		metrics.AttendanceCallErrors.WithLabelValues("checkout").Inc()
		return &Result{Outcome: OutcomeTransient}, fmt.Errorf("checkout returned status %d", resp.StatusCode)
	}
}

// Today returns today's attendance record for userID.
func (c *Client) Today(ctx context.Context, userID string) (*TodayRecord, error) {
	start := time.Now()
	defer func() {
		metrics.AttendanceCallDuration.WithLabelValues("today").Observe(time.Since(start).Seconds())
	}()

	request, err := c.newRequest(ctx, userID, http.MethodGet, "/api/v1/attendance/today", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		metrics.AttendanceCallErrors.WithLabelValues("today").Inc()
		return nil, fmt.Errorf("send today request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.AttendanceCallErrors.WithLabelValues("today").Inc()
		return nil, fmt.Errorf("today returned status %d", resp.StatusCode)
	}

	var record TodayRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode today response: %w", err)
	}

	return &record, nil
}

func (c *Client) post(ctx context.Context, userID, path string, payload interface{}) (*http.Response, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	request, err := c.newRequest(ctx, userID, http.MethodPost, path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, userID, method, path string, body *bytes.Reader) (*http.Request, error) {
	credential, err := c.generator.GenerateServiceToken(userID)
	if err != nil {
		return nil, fmt.Errorf("mint service credential: %w", err)
	}

	var request *http.Request
	if body != nil {
		request, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		request, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+credential)

	return request, nil
}

func decodeError(resp *http.Response) errorResponse {
	var apiErr errorResponse
	// Decode failures leave the zero value, which classifies as transient.
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	return apiErr
}
