package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/iudanet/medicnote/internal/models"
	"github.com/iudanet/medicnote/pkg/api"
)

// DefaultTimeout bounds a single remote call
const DefaultTimeout = 10 * time.Second

// HTTPGateway talks to the medicnote server over HTTP/JSON
type HTTPGateway struct {
	httpClient *http.Client
	tokens     TokenSource
	baseURL    string
	timeout    time.Duration
}

var (
	_ Gateway = (*HTTPGateway)(nil)
	_ AuthAPI = (*HTTPGateway)(nil)
)

// NewHTTP creates a gateway for baseURL. A zero timeout means DefaultTimeout.
func NewHTTP(baseURL string, tokens TokenSource, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPGateway{
		baseURL: baseURL,
		tokens:  tokens,
		timeout: timeout,
		httpClient: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// keep the bearer token across redirects
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// HealthCheck probes the server
func (g *HTTPGateway) HealthCheck(ctx context.Context) (*Health, error) {
	var resp api.HealthResponse
	err := g.doRequest(ctx, "health check", http.MethodGet, "/api/v1/health", nil, &resp)
	if err != nil {
		if KindOf(err) == KindNotAuthenticated {
			return &Health{OK: true}, nil
		}
		return nil, err
	}

	return &Health{
		OK:            true,
		Authenticated: resp.Count != nil,
		Count:         resp.Count,
		Version:       resp.Version,
	}, nil
}

// Create stores a new record
func (g *HTTPGateway) Create(ctx context.Context, table string, rec *models.Record) (*models.Record, error) {
	req := api.CreateRecordRequest{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Fields:    rec.Fields,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}

	var resp api.Record
	if err := g.doRequest(ctx, "create", http.MethodPost, recordsPath(table), req, &resp); err != nil {
		return nil, err
	}
	return FromAPI(table, &resp), nil
}

// Fetch returns a live record
func (g *HTTPGateway) Fetch(ctx context.Context, table, id string) (*models.Record, error) {
	var resp api.Record
	if err := g.doRequest(ctx, "fetch", http.MethodGet, recordPath(table, id), nil, &resp); err != nil {
		return nil, err
	}
	return FromAPI(table, &resp), nil
}

// FetchAll returns the owner's live records, newest first
func (g *HTTPGateway) FetchAll(ctx context.Context, table, ownerID string) ([]*models.Record, error) {
	path := recordsPath(table) + "?owner_id=" + url.QueryEscape(ownerID)

	var resp api.ListRecordsResponse
	if err := g.doRequest(ctx, "fetch all", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]*models.Record, 0, len(resp.Records))
	for i := range resp.Records {
		records = append(records, FromAPI(table, &resp.Records[i]))
	}
	return records, nil
}

// Update replaces the fields of a live record
func (g *HTTPGateway) Update(ctx context.Context, table, id string, fields map[string]any, updatedAt time.Time) (*models.Record, error) {
	req := api.UpdateRecordRequest{
		Fields:    fields,
		UpdatedAt: updatedAt,
	}

	var resp api.Record
	if err := g.doRequest(ctx, "update", http.MethodPut, recordPath(table, id), req, &resp); err != nil {
		return nil, err
	}
	return FromAPI(table, &resp), nil
}

// SoftDelete tombstones a record
func (g *HTTPGateway) SoftDelete(ctx context.Context, table, id string, deletedAt time.Time) error {
	path := recordPath(table, id) + "?deleted_at=" + url.QueryEscape(deletedAt.UTC().Format(time.RFC3339Nano))
	return g.doRequest(ctx, "soft delete", http.MethodDelete, path, nil, nil)
}

// Register creates an account
func (g *HTTPGateway) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := g.doRequest(ctx, "register", http.MethodPost, "/api/v1/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for an access token
func (g *HTTPGateway) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := g.doRequest(ctx, "login", http.MethodPost, "/api/v1/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.UserID == "" {
		return nil, &RemoteError{Op: "login", Kind: KindRejected, Message: "server response has no user_id"}
	}
	return &resp, nil
}

func recordsPath(table string) string {
	return "/api/v1/tables/" + url.PathEscape(table) + "/records"
}

func recordPath(table, id string) string {
	return recordsPath(table) + "/" + url.PathEscape(id)
}

// doRequest performs one bounded JSON call and classifies any failure
func (g *HTTPGateway) doRequest(ctx context.Context, op, method, path string, body, result any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return &RemoteError{Op: op, Kind: KindRejected, Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bodyReader)
	if err != nil {
		return &RemoteError{Op: op, Kind: KindNetwork, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.tokens != nil {
		if token := g.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Kind: transportKind(err), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Op: op, Kind: transportKind(err), StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		re := &RemoteError{Op: op, Kind: kindForStatus(resp.StatusCode), StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && (errResp.Message != "" || errResp.Error != "") {
			re.Message = errResp.Message
			if re.Message == "" {
				re.Message = errResp.Error
			}
		} else {
			re.Message = string(bytes.TrimSpace(respBody))
		}
		return re
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &RemoteError{Op: op, Kind: KindRejected, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}

	return nil
}

func transportKind(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// FromAPI converts a wire record of table into the model
func FromAPI(table string, r *api.Record) *models.Record {
	return &models.Record{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Table:     table,
		Fields:    r.Fields,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		DeletedAt: r.DeletedAt,
	}
}
