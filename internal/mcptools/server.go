package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// version is set by the linker at build time.
var version = "dev"

// NewArchiveMCPServer creates an MCP server with the archive tools registered.
func NewArchiveMCPServer(svc *ArchiveService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "kinship",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_archives",
		Description: "List stored family archives, most recently updated first, with member and relation counts.",
	}, svc.ListArchives)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_archive",
		Description: "Create a new family archive. Optionally add a first member who becomes the root the labels are computed from.",
	}, svc.CreateArchive)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_role",
		Description: "Resolve what a member is to the archive root (or another member), e.g. Бабушка or Брат. Returns the label and the relation path used.",
	}, svc.ResolveRole)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_roles",
		Description: "Label every member of an archive relative to its root and list members with no path to the root.",
	}, svc.ListRoles)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_related",
		Description: "List the direct relatives of a member with the relation type from that member's side (parent, child, spouse, sibling).",
	}, svc.GetRelated)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_member",
		Description: "Add a member to an archive, optionally linked to an existing member as their parent, child, spouse or sibling.",
	}, svc.AddMember)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_relation",
		Description: "Link two existing members. Parent relations point from parent to child. Duplicate relations are not added twice.",
	}, svc.AddRelation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_member",
		Description: "Delete a member and all relations touching it. Clears the root if the member was the root.",
	}, svc.RemoveMember)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_root",
		Description: "Change the member labels are computed from and return the relabeled roster.",
	}, svc.SetRoot)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_diagram",
		Description: "Render the family tree as a Mermaid flowchart with each member's role.",
	}, svc.RenderDiagram)

	return server
}

// RunMCPServer starts an HTTP server exposing the archive MCP tools and
// blocks until ctx is cancelled.
func RunMCPServer(ctx context.Context, svc *ArchiveService, addr string) error {
	server := NewArchiveMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			svc.log.Warn("mcp server shutdown", zap.Error(err))
		}
	}()

	svc.log.Info("mcp server listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, svc *ArchiveService) error {
	return NewArchiveMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
