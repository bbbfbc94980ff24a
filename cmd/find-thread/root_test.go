package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
)

type mockThreadRepo struct {
	threads []domain.Thread
	err     error
	limit   int
}

func (m *mockThreadRepo) ListThreads(ctx context.Context, limit int) ([]domain.Thread, error) {
	m.limit = limit
	return m.threads, m.err
}

func TestPrintThreads(t *testing.T) {
	threads := &mockThreadRepo{threads: []domain.Thread{
		{ID: "oc_1", Title: "friends", Members: []domain.Member{{UserID: "u1", Name: "alice"}, {UserID: "u2", Name: "bob"}}},
		{ID: "oc_2", Title: "empty"},
	}}
	var buf bytes.Buffer

	require.NoError(t, printThreads(context.Background(), &buf, threads, 500))

	assert.Equal(t, 100, threads.limit)
	assert.Equal(t,
		"THREAD_ID: oc_1 | title: friends | users: [alice bob]\n"+
			"THREAD_ID: oc_2 | title: empty | users: []\n",
		buf.String())
}

func TestPrintThreads_Error(t *testing.T) {
	var buf bytes.Buffer

	err := printThreads(context.Background(), &buf, &mockThreadRepo{err: errors.New("forbidden")}, 10)

	assert.ErrorContains(t, err, "list threads: forbidden")
	assert.Empty(t, buf.String())
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()

	limit, err := cmd.Flags().GetInt("limit")
	require.NoError(t, err)
	assert.Equal(t, 100, limit)
	assert.NotNil(t, cmd.Flags().Lookup("mcp"))
	assert.NotNil(t, cmd.Flags().Lookup("dump-session"))
}

func TestRootCmd_RequiresCredentials(t *testing.T) {
	t.Setenv("FEISHU_APP_ID", "")
	t.Setenv("FEISHU_APP_SECRET", "")
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	assert.ErrorContains(t, err, "FEISHU_APP_ID")
}
