package main

import (
	"github.com/fwojciec/siteindex/mcp"
)

// Run executes the serve command. Stdout carries the protocol, so only
// the logger writes diagnostics.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server, err := mcp.NewServer(&mcp.Services{
		Planner:   deps.Planner,
		Indexer:   deps.Indexer,
		Search:    deps.Search,
		Pages:     deps.Pages,
		Inspector: deps.Inspector,
	}, deps.Logger)
	if err != nil {
		return err
	}

	return server.Run(deps.Ctx)
}
