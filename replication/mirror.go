// Package replication propagates local user mutations to a remote SCIM
// mirror. Replication is best-effort and one-way: the mutating caller never
// waits on it and never sees its failures.
package replication

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
)

// Action is the kind of mutation being replicated.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Task is an ephemeral replication unit: the action, the target resource
// identifier, and an immutable payload snapshot serialized at enqueue time.
type Task struct {
	Action  Action
	UserID  string
	Payload []byte
}

// Mirror issues the equivalent remote call for a replication task.
type Mirror interface {
	Apply(ctx context.Context, task Task) error
}

// MirrorClient talks to the remote mirror's SCIM endpoint over HTTP.
type MirrorClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Mirror = (*MirrorClient)(nil)

// NewMirrorClient creates a client for the mirror at baseURL. A non-empty
// token is attached to every request as a bearer credential. The timeout
// bounds each replication call so a stalled mirror cannot leak background
// work.
func NewMirrorClient(baseURL, token string, timeout time.Duration) *MirrorClient {
	httpClient := &http.Client{Timeout: timeout}
	if token != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), source)
		httpClient.Timeout = timeout
	}
	return &MirrorClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Apply issues POST for creates, PATCH for updates, and DELETE for deletes
// against the mirror's Users endpoint.
func (c *MirrorClient) Apply(ctx context.Context, task Task) error {
	var (
		method string
		url    string
		body   io.Reader
	)
	switch task.Action {
	case ActionCreate:
		method = http.MethodPost
		url = c.baseURL + "/scim/v2/Users"
		body = bytes.NewReader(task.Payload)
	case ActionUpdate:
		method = http.MethodPatch
		url = c.baseURL + "/scim/v2/Users/" + task.UserID
		body = bytes.NewReader(task.Payload)
	case ActionDelete:
		method = http.MethodDelete
		url = c.baseURL + "/scim/v2/Users/" + task.UserID
	default:
		return errors.Wrap(apperrors.ErrReplicationFailure, "[MirrorClient.Apply] unknown action "+string(task.Action))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrap(err, "[MirrorClient.Apply] http.NewRequestWithContext")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(apperrors.ErrReplicationFailure, "[MirrorClient.Apply] "+err.Error())
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Wrap(apperrors.ErrReplicationFailure,
			fmt.Sprintf("[MirrorClient.Apply] mirror rejected %s %s: %d", method, url, resp.StatusCode))
	}
	return nil
}
