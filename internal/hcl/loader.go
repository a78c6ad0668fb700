package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/argoflow/internal/config"
	"github.com/specialistvlad/argoflow/internal/ctxlog"
	"github.com/specialistvlad/argoflow/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ErrNoFiles is returned when none of the given paths contain an .hcl file.
var ErrNoFiles = errors.New("no .hcl files found")

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load orchestrates the entire HCL configuration loading process.
func (l *Loader) Load(ctx context.Context, vars map[string]string, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	var files []*hcl.File
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		files = append(files, hclFile)
	}

	return l.decode(ctx, vars, files...)
}

// LoadSource parses a single in-memory HCL document. It is used for embedded
// defaults and in tests.
func (l *Loader) LoadSource(ctx context.Context, vars map[string]string, filename string, src []byte) (*config.Model, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	return l.decode(ctx, vars, hclFile)
}

func (l *Loader) decode(ctx context.Context, vars map[string]string, files ...*hcl.File) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	evalCtx := newEvalContext(vars)

	model := &config.Model{Environments: make(map[string]*config.Environment)}
	for _, file := range files {
		var root fileRoot
		if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %w", diags)
		}

		for _, wb := range root.Workflows {
			if model.Workflow != nil {
				return nil, errors.New("more than one workflow block defined")
			}
			wf, err := translateWorkflow(wb)
			if err != nil {
				return nil, err
			}
			model.Workflow = wf
		}
		for _, eb := range root.Environments {
			if _, exists := model.Environments[eb.Name]; exists {
				return nil, fmt.Errorf("environment %q defined more than once", eb.Name)
			}
			env, err := translateEnvironment(eb)
			if err != nil {
				return nil, err
			}
			model.Environments[env.Name] = env
		}
	}

	if model.Workflow == nil {
		logger.Debug("No workflow block found, using defaults.")
		model.Workflow = defaultWorkflow()
	}

	logger.Debug("HCL loading complete.", "environments", len(model.Environments))
	return model, nil
}

// newEvalContext exposes vars as the `var` object and a small set of string
// functions to expressions.
func newEvalContext(vars map[string]string) *hcl.EvalContext {
	attrs := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		attrs[k] = cty.StringVal(v)
	}
	varObj := cty.EmptyObjectVal
	if len(attrs) > 0 {
		varObj = cty.ObjectVal(attrs)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": varObj},
		Functions: map[string]function.Function{
			"join":   stdlib.JoinFunc,
			"format": stdlib.FormatFunc,
			"lower":  stdlib.LowerFunc,
			"upper":  stdlib.UpperFunc,
		},
	}
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
