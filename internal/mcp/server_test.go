package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
)

type mockThreadRepo struct {
	threads []domain.Thread
	err     error
	limits  []int
}

func (m *mockThreadRepo) ListThreads(ctx context.Context, limit int) ([]domain.Thread, error) {
	m.limits = append(m.limits, limit)
	return m.threads, m.err
}

func TestHandleListThreads(t *testing.T) {
	threads := &mockThreadRepo{threads: []domain.Thread{
		{ID: "oc_1", Title: "friends", Members: []domain.Member{{UserID: "u1", Name: "alice"}, {UserID: "u2", Name: "bob"}}},
		{ID: "oc_2", Title: "quiet"},
	}}
	s := NewThreadServer(threads, "test")

	_, out, err := s.handleListThreads(context.Background(), nil, ListThreadsInput{Limit: 5})

	require.NoError(t, err)
	assert.Equal(t, []int{5}, threads.limits)
	require.Len(t, out.Threads, 2)
	assert.Equal(t, ThreadInfo{ThreadID: "oc_1", Title: "friends", Users: []string{"alice", "bob"}}, out.Threads[0])
	assert.Empty(t, out.Threads[1].Users)
}

func TestHandleListThreads_Error(t *testing.T) {
	s := NewThreadServer(&mockThreadRepo{err: errors.New("forbidden")}, "test")

	_, _, err := s.handleListThreads(context.Background(), nil, ListThreadsInput{})

	assert.ErrorContains(t, err, "forbidden")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, ClampLimit(0))
	assert.Equal(t, 100, ClampLimit(-3))
	assert.Equal(t, 100, ClampLimit(500))
	assert.Equal(t, 7, ClampLimit(7))
}

func TestThreadServer_CallOverTransport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	threads := &mockThreadRepo{threads: []domain.Thread{{ID: "oc_1", Title: "friends"}}}
	s := NewThreadServer(threads, "test")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_threads",
		Arguments: map[string]any{"limit": 10},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []int{10}, threads.limits)

	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	listed := structured["threads"].([]any)
	require.Len(t, listed, 1)
	assert.Equal(t, "oc_1", listed[0].(map[string]any)["thread_id"])
}
