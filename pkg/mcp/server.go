// Package mcp exposes the catalog over the Model Context Protocol so agent
// hosts can search skills, match agents, and lint catalogs without shelling
// out to the CLI.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/lint"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/skills"
	"github.com/skillet-ai/skillet/pkg/version"
)

// Server wraps an MCP stdio server over the document catalog.
type Server struct {
	mcp    *server.MCPServer
	skills *skills.Discovery
	agents *agents.Loader
}

// NewServer creates a catalog MCP server using the given discovery and
// loader. Nil values fall back to the default catalog directories.
func NewServer(skillDiscovery *skills.Discovery, agentLoader *agents.Loader) (*Server, error) {
	if skillDiscovery == nil {
		var err error
		skillDiscovery, err = skills.NewDiscovery(skills.WithDefaultDirs())
		if err != nil {
			return nil, err
		}
	}
	if agentLoader == nil {
		var err error
		agentLoader, err = agents.NewLoader(agents.WithDefaultDirs())
		if err != nil {
			return nil, err
		}
	}

	s := &Server{
		skills: skillDiscovery,
		agents: agentLoader,
	}

	s.mcp = server.NewMCPServer(
		"skillet",
		version.Get().Version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s.mcp.AddTool(skillSearchTool(), s.handleSkillSearch())
	s.mcp.AddTool(skillShowTool(), s.handleSkillShow())
	s.mcp.AddTool(agentMatchTool(), s.handleAgentMatch())
	s.mcp.AddTool(catalogLintTool(), s.handleCatalogLint())

	return s, nil
}

// ServeStdio serves MCP over stdin and stdout until the context is cancelled
// or the stream closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	logger.G(ctx).Info("Starting MCP stdio server")

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

func respondJSON(input any) (*mcp.CallToolResult, error) {
	result, err := json.Marshal(input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

type skillSearchArgs struct {
	Query string `json:"query"`
	Stack string `json:"stack,omitempty"`
}

func skillSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "skill-search",
		Description: "Search the skill catalog by name and description. Returns matching skills with their framework scope and source path.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Substring to match against skill names and descriptions",
				},
				"stack": map[string]any{
					"type":        "string",
					"description": "Optional framework filter (matches the skill's applies_to)",
				},
			},
			Required: []string{"query"},
		},
	}
}

func (s *Server) handleSkillSearch() server.ToolHandlerFunc {
	return mcp.NewTypedToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args skillSearchArgs) (*mcp.CallToolResult, error) {
		discovered, err := s.skills.DiscoverSkills()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to discover skills: %v", err)), nil
		}

		query := strings.ToLower(args.Query)
		var results []map[string]any
		for _, skill := range discovered {
			if args.Stack != "" && skill.AppliesTo != args.Stack {
				continue
			}
			haystack := strings.ToLower(skill.Name + " " + skill.Description)
			if !strings.Contains(haystack, query) {
				continue
			}
			results = append(results, map[string]any{
				"name":        skill.Name,
				"description": skill.Description,
				"applies_to":  skill.AppliesTo,
				"category":    skill.Category,
				"path":        skill.Path,
			})
		}
		sort.Slice(results, func(i, j int) bool {
			return results[i]["name"].(string) < results[j]["name"].(string)
		})

		return respondJSON(map[string]any{
			"query":   args.Query,
			"results": results,
		})
	})
}

type skillShowArgs struct {
	Name string `json:"name"`
}

func skillShowTool() mcp.Tool {
	return mcp.Tool{
		Name:        "skill-show",
		Description: "Fetch the full markdown body of a skill by name.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Skill name, including any plugin prefix (e.g. 'acme/infra-pack/caching')",
				},
			},
			Required: []string{"name"},
		},
	}
}

func (s *Server) handleSkillShow() server.ToolHandlerFunc {
	return mcp.NewTypedToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args skillShowArgs) (*mcp.CallToolResult, error) {
		skill, err := s.skills.GetSkill(args.Name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Skill not found: %v", err)), nil
		}
		return mcp.NewToolResultText(skill.Content), nil
	})
}

type agentMatchArgs struct {
	Phrase string `json:"phrase"`
	Domain string `json:"domain,omitempty"`
}

func agentMatchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "agent-match",
		Description: "Match a request phrase against agent trigger patterns. Returns agents ranked by match quality and tier.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"phrase": map[string]any{
					"type":        "string",
					"description": "The request phrase to match (e.g. 'review claim for water damage')",
				},
				"domain": map[string]any{
					"type":        "string",
					"description": "Optional domain filter",
				},
			},
			Required: []string{"phrase"},
		},
	}
}

func (s *Server) handleAgentMatch() server.ToolHandlerFunc {
	return mcp.NewTypedToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args agentMatchArgs) (*mcp.CallToolResult, error) {
		loaded, err := s.agents.ListAgents(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load agents: %v", err)), nil
		}

		var opts []agents.MatcherOption
		if args.Domain != "" {
			opts = append(opts, agents.WithDomain(args.Domain))
		}
		matches := agents.NewMatcher(loaded, opts...).Match(args.Phrase)

		results := make([]map[string]any, 0, len(matches))
		for _, match := range matches {
			results = append(results, map[string]any{
				"name":        match.Agent.Metadata.Name,
				"description": match.Agent.Metadata.Description,
				"tier":        match.Agent.Metadata.Tier,
				"domain":      match.Agent.Metadata.Domain,
				"trigger":     match.Trigger,
				"score":       match.Score,
			})
		}

		return respondJSON(map[string]any{
			"phrase":  args.Phrase,
			"matches": results,
		})
	})
}

type catalogLintArgs struct {
	Path string `json:"path"`
}

func catalogLintTool() mcp.Tool {
	return mcp.Tool{
		Name:        "catalog-lint",
		Description: "Lint a catalog directory for malformed front matter, invalid trigger lists, stack mismatches, encoding problems, and duplicate names.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Catalog directory to lint",
				},
			},
			Required: []string{"path"},
		},
	}
}

func (s *Server) handleCatalogLint() server.ToolHandlerFunc {
	return mcp.NewTypedToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args catalogLintArgs) (*mcp.CallToolResult, error) {
		result, err := lint.NewRunner().Run(args.Path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Lint failed: %v", err)), nil
		}
		return respondJSON(map[string]any{
			"checked": result.Checked,
			"issues":  result.Issues,
			"failed":  result.HasErrors(),
		})
	})
}
