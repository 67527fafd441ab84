package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks JSON to the shift-handover service's restart endpoints.
// All endpoints are POST, matching the remote service's convention.
type Client struct {
	baseURL string
	session string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetSessionToken sets the session id attached as a bearer token on
// subsequent requests. An empty id clears it.
func (c *Client) SetSessionToken(id string) {
	c.session = strings.TrimSpace(id)
}

func (c *Client) IssueSessionID(ctx context.Context) (string, error) {
	var resp SessionIDResponse
	if err := c.doJSON(ctx, "/get_sessionId/", struct{}{}, &resp); err != nil {
		return "", err
	}
	id := strings.TrimSpace(resp.SessionID)
	if id == "" {
		return "", errors.New("service returned an empty session id")
	}
	return id, nil
}

func (c *Client) GetStatus(ctx context.Context, sessionID string) (*StatusDocument, error) {
	var resp StatusDocument
	req := StatusRequest{SessionID: strings.TrimSpace(sessionID)}
	if err := c.doJSON(ctx, "/get_restartStatus/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) StartSet(ctx context.Context, req StartSetRequest) (*StatusDocument, error) {
	if req.SetNumber < 1 {
		return nil, errors.New("set number must be 1-based")
	}
	var resp StatusDocument
	if err := c.doJSON(ctx, "/start_restartSet/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CompleteStep(ctx context.Context, req CompleteStepRequest) error {
	if strings.TrimSpace(req.SubSetsID) == "" {
		return errors.New("subset identifier is required")
	}
	return c.doJSON(ctx, "/complete_restartStep/", req, nil)
}

func (c *Client) AcknowledgeSet(ctx context.Context, req AcknowledgeSetRequest) (*AcknowledgeSetResponse, error) {
	if strings.TrimSpace(req.SubSetsID) == "" {
		return nil, errors.New("subset identifier is required")
	}
	var resp AcknowledgeSetResponse
	if err := c.doJSON(ctx, "/acknowledge_restartSet/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session != "" {
		req.Header.Set("Authorization", "Bearer "+c.session)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	message := payload.Error
	if message == "" {
		message = payload.Message
	}
	if message == "" {
		message = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
