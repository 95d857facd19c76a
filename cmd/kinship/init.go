package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dusk-indust/kinship/internal/config"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// kinshipMCPEntry is the MCP server configuration for the kinship binary.
var kinshipMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "kinship",
  "args": ["serve-mcp", "-stdio"]
}`)

// runInit writes a default kinship.yml and registers the MCP server in the
// project's .mcp.json.
func (a *app) runInit(args []string) error {
	fset := flag.NewFlagSet("init", flag.ContinueOnError)
	fset.SetOutput(a.out)
	force := fset.Bool("force", false, "overwrite existing files and entries")
	if err := fset.Parse(args); err != nil {
		return err
	}

	abs, err := filepath.Abs(a.root)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	cfgPath := filepath.Join(abs, config.FileName)
	_, statErr := os.Stat(cfgPath)
	switch {
	case statErr == nil && !*force:
		fmt.Fprintf(a.out, "  skipped %s (exists, use -force to overwrite)\n", config.FileName)
	case statErr == nil || errors.Is(statErr, fs.ErrNotExist):
		if err := config.Write(abs, config.Defaults()); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "  created %s\n", config.FileName)
	default:
		return statErr
	}

	if err := a.mergeMCPConfig(filepath.Join(abs, ".mcp.json"), *force); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "\nSetup complete. Import an archive with 'kinship import <file.json>'.")
	return nil
}

// mergeMCPConfig creates or merges the kinship entry into .mcp.json.
func (a *app) mergeMCPConfig(mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["kinship"]; exists && !force {
		fmt.Fprintln(a.out, "  skipped .mcp.json kinship entry (exists, use -force to overwrite)")
		return nil
	}

	cfg.MCPServers["kinship"] = kinshipMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(a.out, "  %s .mcp.json with kinship MCP server\n", action)
	return nil
}
