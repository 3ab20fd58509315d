package replication_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
	"github.com/jrsteele09/go-scim-gateway/replication"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

type recordingServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	server   *httptest.Server
}

func newRecordingServer() *recordingServer {
	rs := &recordingServer{}
	rs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rs.mu.Lock()
		rs.requests = append(rs.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		rs.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	return rs
}

func (rs *recordingServer) recorded() []recordedRequest {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]recordedRequest(nil), rs.requests...)
}

func TestDispatcherReplicatesMutations(t *testing.T) {
	rs := newRecordingServer()
	defer rs.server.Close()

	mirror := replication.NewMirrorClient(rs.server.URL, "sk_service_mirror", 5*time.Second)
	dispatcher := replication.NewDispatcher(mirror, 2, 16, 5*time.Second)

	dispatcher.UserCreated("id-1", map[string]string{"userName": "jane@example.com"})
	dispatcher.UserUpdated("id-1", map[string]string{"userName": "jane@example.com", "title": "Engineer"})
	dispatcher.UserDeleted("id-1")
	dispatcher.Close()

	requests := rs.recorded()
	require.Len(t, requests, 3)

	byMethod := map[string]recordedRequest{}
	for _, request := range requests {
		byMethod[request.Method] = request
		require.Equal(t, "Bearer sk_service_mirror", request.Auth)
	}

	require.Equal(t, "/scim/v2/Users", byMethod[http.MethodPost].Path)
	require.Contains(t, byMethod[http.MethodPost].Body, "jane@example.com")
	require.Equal(t, "/scim/v2/Users/id-1", byMethod[http.MethodPatch].Path)
	require.Contains(t, byMethod[http.MethodPatch].Body, "Engineer")
	require.Equal(t, "/scim/v2/Users/id-1", byMethod[http.MethodDelete].Path)
	require.Empty(t, byMethod[http.MethodDelete].Body)
}

func TestMirrorClientSurfacesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	mirror := replication.NewMirrorClient(server.URL, "", time.Second)
	err := mirror.Apply(context.Background(), replication.Task{Action: replication.ActionDelete, UserID: "id-1"})
	require.ErrorIs(t, err, apperrors.ErrReplicationFailure)
}

type blockingMirror struct {
	release chan struct{}
}

func (m *blockingMirror) Apply(ctx context.Context, task replication.Task) error {
	<-m.release
	return nil
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	mirror := &blockingMirror{release: make(chan struct{})}
	dispatcher := replication.NewDispatcher(mirror, 1, 1, time.Second)

	// First task occupies the worker, second fills the queue. The worker may
	// not have picked up the first yet, so allow one extra slot before the
	// queue is provably full.
	accepted := 0
	for i := 0; i < 3; i++ {
		if dispatcher.Enqueue(replication.Task{Action: replication.ActionDelete, UserID: "id-1"}) {
			accepted++
		}
	}
	require.LessOrEqual(t, accepted, 2)

	overflow := dispatcher.Enqueue(replication.Task{Action: replication.ActionDelete, UserID: "id-2"})
	require.False(t, overflow)

	close(mirror.release)
	dispatcher.Close()
}

func TestEnqueueAfterCloseIsDropped(t *testing.T) {
	mirror := &blockingMirror{release: make(chan struct{})}
	close(mirror.release)

	dispatcher := replication.NewDispatcher(mirror, 1, 4, time.Second)
	dispatcher.Close()

	require.False(t, dispatcher.Enqueue(replication.Task{Action: replication.ActionCreate, UserID: "id-1"}))
}
