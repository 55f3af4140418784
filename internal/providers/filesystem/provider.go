package filesystem

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SandboxFS/internal/config"
	"github.com/GriffinCanCode/SandboxFS/internal/logging"
	"github.com/GriffinCanCode/SandboxFS/internal/types"
)

// Provider exposes sandboxed filesystem operations as a tool service.
// All state is immutable after construction; every request gets its own
// validation and working set.
type Provider struct {
	guard  *Guard
	limits config.LimitsConfig
	log    *logging.Logger
}

// NewProvider creates the filesystem provider.
func NewProvider(guard *Guard, limits config.LimitsConfig, log *logging.Logger) *Provider {
	return &Provider{guard: guard, limits: limits, log: log}
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "filesystem",
		Name:        "Filesystem Service",
		Description: "File and directory operations confined to allowed roots",
		Capabilities: []string{
			"read", "write", "edit", "list", "tree", "move", "search", "stat",
		},
		Tools: []types.Tool{
			{
				ID:          "filesystem.read",
				Name:        "Read File",
				Description: "Read complete contents of a file",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "filesystem.read_batch",
				Name:        "Read Multiple Files",
				Description: "Read several files; one failure never aborts the batch",
				Parameters: []types.Parameter{
					{Name: "paths", Type: "array", Description: "File paths", Required: true},
				},
				Returns: "array",
			},
			{
				ID:          "filesystem.write",
				Name:        "Write File",
				Description: "Create or overwrite a file (atomic)",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
					{Name: "content", Type: "string", Description: "Content to write", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "filesystem.edit",
				Name:        "Edit File",
				Description: "Apply text replacements and return a unified diff",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
					{Name: "edits", Type: "array", Description: "List of {old_text, new_text} edits", Required: true},
					{Name: "dry_run", Type: "boolean", Description: "Preview the diff without writing", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "filesystem.mkdir",
				Name:        "Create Directory",
				Description: "Create a directory; succeeds if it already exists",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Directory path", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "filesystem.list",
				Name:        "List Directory",
				Description: "List single-level contents of a directory",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Directory path", Required: true},
				},
				Returns: "array",
			},
			{
				ID:          "filesystem.tree",
				Name:        "Directory Tree",
				Description: "Recursive nested directory structure",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Directory path", Required: true},
					{Name: "max_depth", Type: "number", Description: "Max depth (0=config limit)", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "filesystem.move",
				Name:        "Move/Rename",
				Description: "Move or rename; fails if the destination exists",
				Parameters: []types.Parameter{
					{Name: "source", Type: "string", Description: "Source path", Required: true},
					{Name: "destination", Type: "string", Description: "Destination path", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "filesystem.search",
				Name:        "Search Files",
				Description: "Recursive name search with exclude globs and a result cap",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Root directory", Required: true},
					{Name: "pattern", Type: "string", Description: "Substring or glob, case-insensitive", Required: true},
					{Name: "exclude_patterns", Type: "array", Description: "Exclude globs", Required: false},
					{Name: "max_results", Type: "number", Description: "Result cap (0=config limit)", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "filesystem.search_content",
				Name:        "Search Content",
				Description: "Search text inside files (parallel walk)",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Root directory", Required: true},
					{Name: "query", Type: "string", Description: "Text to search", Required: true},
					{Name: "extensions", Type: "array", Description: "File extensions to include", Required: false},
					{Name: "max_results", Type: "number", Description: "File cap (0=config limit)", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "filesystem.stat",
				Name:        "File Info",
				Description: "Get detailed entry metadata",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File or directory path", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "filesystem.roots",
				Name:        "List Allowed Roots",
				Description: "List the directories this service may access",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
		},
	}
}

// Execute runs one named operation against the provided argument map.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}) (*types.Result, error) {
	var result *types.Result
	switch toolID {
	case "filesystem.read":
		result = p.read(params)
	case "filesystem.read_batch":
		result = p.readBatch(params)
	case "filesystem.write":
		result = p.write(params)
	case "filesystem.edit":
		result = p.edit(params)
	case "filesystem.mkdir":
		result = p.mkdir(params)
	case "filesystem.list":
		result = p.list(params)
	case "filesystem.tree":
		result = p.tree(params)
	case "filesystem.move":
		result = p.move(params)
	case "filesystem.search":
		result = p.search(ctx, params)
	case "filesystem.search_content":
		result = p.searchContent(ctx, params)
	case "filesystem.stat":
		result = p.stat(params)
	case "filesystem.roots":
		result = p.roots()
	default:
		result = failure(invalidArguments("unknown tool: %s", toolID))
	}

	if !result.Success && result.Error != nil {
		p.log.Debug("tool call failed",
			zap.String("tool", toolID),
			zap.String("kind", result.Error.Kind),
			zap.String("message", result.Error.Message),
		)
	}
	return result, nil
}

func (p *Provider) read(params map[string]interface{}) *types.Result {
	var req pathRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	resolved, err := p.guard.Validate(req.Path)
	if err != nil {
		return failure(err)
	}

	content, err := ReadFile(resolved, p.limits.MaxReadBytes)
	if err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{
		"path":    resolved,
		"content": content,
		"size":    len(content),
	})
}

func (p *Provider) readBatch(params map[string]interface{}) *types.Result {
	var req readBatchRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	// Per-file isolation: one bad path never fails sibling reads.
	results := make([]map[string]interface{}, 0, len(req.Paths))
	for _, path := range req.Paths {
		item := map[string]interface{}{"path": path}
		resolved, err := p.guard.Validate(path)
		if err == nil {
			var content string
			if content, err = ReadFile(resolved, p.limits.MaxReadBytes); err == nil {
				item["path"] = resolved
				item["content"] = content
			}
		}
		if err != nil {
			item["error"] = errorDetail(err)
		}
		results = append(results, item)
	}
	return success(map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

func (p *Provider) write(params map[string]interface{}) *types.Result {
	var req writeRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	resolved, err := p.guard.Validate(req.Path)
	if err != nil {
		return failure(err)
	}

	if err := WriteFileAtomic(resolved, []byte(*req.Content)); err != nil {
		return failure(err)
	}
	p.log.Info("file written", zap.String("path", resolved), zap.Int("size", len(*req.Content)))
	return success(map[string]interface{}{
		"path":    resolved,
		"written": true,
		"size":    len(*req.Content),
	})
}

func (p *Provider) edit(params map[string]interface{}) *types.Result {
	var req editRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	resolved, err := p.guard.Validate(req.Path)
	if err != nil {
		return failure(err)
	}

	raw, err := ReadFile(resolved, p.limits.MaxReadBytes)
	if err != nil {
		return failure(err)
	}

	newContent, diff, err := ApplyEdits(raw, req.Edits)
	if err != nil {
		return failure(err)
	}

	if !req.DryRun {
		final := restoreLineEndings(newContent, dominantLineEnding(raw))
		if err := WriteFileAtomic(resolved, []byte(final)); err != nil {
			return failure(err)
		}
		p.log.Info("file edited",
			zap.String("path", resolved),
			zap.Int("added", diff.Added),
			zap.Int("removed", diff.Removed),
		)
	}

	return success(map[string]interface{}{
		"path":    resolved,
		"diff":    diff.Render(filepath.Base(resolved)),
		"lines":   diff.Lines,
		"added":   diff.Added,
		"removed": diff.Removed,
		"dry_run": req.DryRun,
	})
}

func (p *Provider) mkdir(params map[string]interface{}) *types.Result {
	var req pathRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	resolved, err := p.guard.Validate(req.Path)
	if err != nil {
		return failure(err)
	}

	if err := CreateDir(resolved); err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{"path": resolved, "created": true})
}

func (p *Provider) list(params map[string]interface{}) *types.Result {
	var req pathRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	resolved, err := p.guard.Validate(req.Path)
	if err != nil {
		return failure(err)
	}

	entries, err := ListDir(resolved)
	if err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{
		"path":    resolved,
		"entries": entries,
		"count":   len(entries),
	})
}

func (p *Provider) tree(params map[string]interface{}) *types.Result {
	var req treeRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	resolved, err := p.guard.Validate(req.Path)
	if err != nil {
		return failure(err)
	}

	maxDepth := req.MaxDepth
	if maxDepth == 0 || maxDepth > p.limits.MaxTreeDepth {
		maxDepth = p.limits.MaxTreeDepth
	}

	root, err := p.guard.Tree(resolved, maxDepth)
	if err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{"path": resolved, "tree": root})
}

func (p *Provider) move(params map[string]interface{}) *types.Result {
	var req moveRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	// Both ends validated before any I/O.
	source, err := p.guard.Validate(req.Source)
	if err != nil {
		return failure(err)
	}
	destination, err := p.guard.Validate(req.Destination)
	if err != nil {
		return failure(err)
	}

	if err := Move(source, destination); err != nil {
		return failure(err)
	}
	p.log.Info("file moved", zap.String("source", source), zap.String("destination", destination))
	return success(map[string]interface{}{
		"source":      source,
		"destination": destination,
		"moved":       true,
	})
}

func (p *Provider) search(ctx context.Context, params map[string]interface{}) *types.Result {
	var req searchRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	resolved, err := p.guard.Validate(req.Path)
	if err != nil {
		return failure(err)
	}

	maxResults := req.MaxResults
	if maxResults == 0 || maxResults > p.limits.MaxSearchResults {
		maxResults = p.limits.MaxSearchResults
	}

	entries, err := p.guard.Search(ctx, resolved, req.Pattern, req.ExcludePatterns, maxResults)
	if err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{
		"path":    resolved,
		"pattern": req.Pattern,
		"entries": entries,
		"count":   len(entries),
	})
}

func (p *Provider) searchContent(ctx context.Context, params map[string]interface{}) *types.Result {
	var req searchContentRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	resolved, err := p.guard.Validate(req.Path)
	if err != nil {
		return failure(err)
	}

	maxResults := req.MaxResults
	if maxResults == 0 || maxResults > p.limits.MaxSearchResults {
		maxResults = p.limits.MaxSearchResults
	}

	matches, err := p.guard.SearchContent(ctx, resolved, req.Query, req.Extensions, maxResults)
	if err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{
		"path":    resolved,
		"query":   req.Query,
		"matches": matches,
		"count":   len(matches),
	})
}

func (p *Provider) stat(params map[string]interface{}) *types.Result {
	var req pathRequest
	if err := decodeAndValidate(params, &req); err != nil {
		return failure(err)
	}

	resolved, err := p.guard.Validate(req.Path)
	if err != nil {
		return failure(err)
	}

	meta, err := Stat(resolved)
	if err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{
		"name":      meta.Name,
		"path":      meta.Path,
		"kind":      meta.Kind,
		"size":      meta.Size,
		"mode":      meta.Mode,
		"created":   meta.Created,
		"modified":  meta.Modified,
		"accessed":  meta.Accessed,
		"mime_type": meta.MimeType,
	})
}

func (p *Provider) roots() *types.Result {
	roots := p.guard.Roots()
	return success(map[string]interface{}{
		"roots": roots,
		"count": len(roots),
	})
}

type validatable interface {
	validate() error
}

func decodeAndValidate(params map[string]interface{}, req validatable) error {
	if err := decodeParams(params, req); err != nil {
		return err
	}
	return req.validate()
}

func success(data map[string]interface{}) *types.Result {
	return &types.Result{Success: true, Data: data}
}

func failure(err error) *types.Result {
	return &types.Result{Success: false, Error: errorDetail(err)}
}

func errorDetail(err error) *types.ErrorDetail {
	var op *OpError
	if errors.As(err, &op) {
		return &types.ErrorDetail{Kind: string(op.Kind), Message: op.Message}
	}
	return &types.ErrorDetail{Kind: string(KindIOError), Message: fmt.Sprintf("unexpected error: %v", err)}
}
