// Package mcp exposes siteindex over the Model Context Protocol.
// The server speaks JSON-RPC on stdin/stdout, so nothing else may write to
// stdout while it runs.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fwojciec/siteindex"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/singleflight"
)

// Version is the MCP server version.
const Version = "0.1.0"

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("mcp: planner, indexer, search, pages and inspector are required")

// Services are the domain services the tools delegate to.
type Services struct {
	Planner   siteindex.Planner
	Indexer   siteindex.Indexer
	Search    siteindex.SearchService
	Pages     siteindex.PageService
	Inspector siteindex.Inspector
}

// Validate returns ErrMissingService if any service is nil.
func (s *Services) Validate() error {
	if s.Planner == nil || s.Indexer == nil || s.Search == nil || s.Pages == nil || s.Inspector == nil {
		return ErrMissingService
	}
	return nil
}

// Server is the MCP server for siteindex.
type Server struct {
	svc    *Services
	server *mcp.Server
	logger *slog.Logger

	// runs collapses concurrent run_index calls for the same plan.
	runs singleflight.Group
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(svc *Services, logger *slog.Logger) (*Server, error) {
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		svc:    svc,
		logger: logger,
		server: mcp.NewServer(&mcp.Implementation{Name: "siteindex", Version: Version}, nil),
	}
	s.registerTools()

	return s, nil
}

// Run serves over stdio until the client disconnects or ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "version", Version)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// runShared executes a plan, sharing one execution between concurrent
// callers for the same plan ID. The run outlives a canceled caller so the
// other callers still receive its result.
func (s *Server) runShared(ctx context.Context, planID string) (*siteindex.RunResult, error) {
	v, err, shared := s.runs.Do(planID, func() (any, error) {
		return s.svc.Indexer.Run(context.WithoutCancel(ctx), planID, nil)
	})
	if shared {
		s.logger.Debug("joined in-flight run", "plan", planID)
	}
	if err != nil {
		return nil, err
	}
	return v.(*siteindex.RunResult), nil
}

// toolError converts err into the message reported to the client.
// Application errors keep their message; others are reported verbatim
// and logged.
func (s *Server) toolError(tool string, err error) error {
	if siteindex.ErrorCode(err) == siteindex.EINTERNAL {
		s.logger.Error("tool failed", "tool", tool, "err", err)
		return err
	}
	return errors.New(siteindex.ErrorMessage(err))
}
