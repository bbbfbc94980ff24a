package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/repo"
)

// MaxThreads is the largest listing the platform returns in one call
const MaxThreads = 100

// ThreadServer exposes the thread listing as MCP tools
type ThreadServer struct {
	server  *mcp.Server
	threads repo.ThreadRepo
}

// NewThreadServer creates a new MCP server over threads
func NewThreadServer(threads repo.ThreadRepo, version string) *ThreadServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "feishu-threads",
		Version: version,
	}, nil)

	s := &ThreadServer{
		server:  server,
		threads: threads,
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_threads",
		Description: "List the chats the bot account can see, with their titles and member names. Use the thread_id as THREAD_ID when configuring the bot.",
	}, s.handleListThreads)

	return s
}

// ListThreadsInput is the input for list_threads
type ListThreadsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of chats to list (default and max 100)"`
}

// ThreadInfo is one listed chat
type ThreadInfo struct {
	ThreadID string   `json:"thread_id"`
	Title    string   `json:"title"`
	Users    []string `json:"users"`
}

// ListThreadsOutput is the output for list_threads
type ListThreadsOutput struct {
	Threads []ThreadInfo `json:"threads"`
}

func (s *ThreadServer) handleListThreads(ctx context.Context, req *mcp.CallToolRequest, input ListThreadsInput) (*mcp.CallToolResult, ListThreadsOutput, error) {
	threads, err := s.threads.ListThreads(ctx, ClampLimit(input.Limit))
	if err != nil {
		return nil, ListThreadsOutput{}, fmt.Errorf("list threads: %w", err)
	}

	out := ListThreadsOutput{Threads: make([]ThreadInfo, 0, len(threads))}
	for _, t := range threads {
		out.Threads = append(out.Threads, ThreadInfo{
			ThreadID: t.ID,
			Title:    t.Title,
			Users:    t.MemberNames(),
		})
	}
	return nil, out, nil
}

// ClampLimit maps a requested listing size into 1..MaxThreads, 0 meaning the max
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxThreads {
		return MaxThreads
	}
	return limit
}

// Run starts the MCP server with stdio transport
func (s *ThreadServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Server returns the underlying MCP server
func (s *ThreadServer) Server() *mcp.Server {
	return s.server
}
