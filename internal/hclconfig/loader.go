package hclconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/config"
	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Settings   []*settingsBlock  `hcl:"settings,block"`
	Components []*componentBlock `hcl:"component,block"`
	Steps      []*stepBlock      `hcl:"step,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

type settingsBlock struct {
	LogLevel      *string `hcl:"log_level,optional"`
	LogFormat     *string `hcl:"log_format,optional"`
	FrameInterval *string `hcl:"frame_interval,optional"`
}

type componentBlock struct {
	Name         string         `hcl:"name,label"`
	Template     *string        `hcl:"template,optional"`
	TemplateFile *string        `hcl:"template_file,optional"`
	Data         hcl.Expression `hcl:"data,optional"`
	DataFile     *string        `hcl:"data_file,optional"`
}

type stepBlock struct {
	Name      string         `hcl:"name,label"`
	Component string         `hcl:"component"`
	Set       hcl.Expression `hcl:"set,optional"`
}

// Load parses every .hcl file under paths and merges them into one model.
// Component names must be unique across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()
	for _, file := range files {
		part, err := l.loadFile(ctx, parser, file)
		if err != nil {
			return nil, err
		}
		for _, c := range part.Components {
			if _, exists := model.Component(c.Name); exists {
				return nil, fmt.Errorf("component '%s' in %s is already defined", c.Name, file)
			}
			model.Components = append(model.Components, c)
		}
		part.Components = nil
		model.Merge(part)
	}

	logger.Debug("HCL loading complete.", "components", len(model.Components), "steps", len(model.Steps))
	return model, nil
}

func (l *Loader) loadFile(ctx context.Context, parser *hclparse.Parser, file string) (*config.Model, error) {
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}
	if len(root.Settings) > 1 {
		return nil, fmt.Errorf("%s: at most one settings block is allowed, found %d", file, len(root.Settings))
	}

	dir := filepath.Dir(file)
	model := &config.Model{}
	for _, s := range root.Settings {
		settings, err := translateSettings(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		model.Settings = settings
	}
	for _, c := range root.Components {
		def, err := l.translateComponent(ctx, dir, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		model.Components = append(model.Components, def)
	}
	for _, s := range root.Steps {
		step, err := l.translateStep(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		model.Steps = append(model.Steps, step)
	}
	return model, nil
}

func translateSettings(s *settingsBlock) (config.Settings, error) {
	var out config.Settings
	if s.LogLevel != nil {
		out.LogLevel = *s.LogLevel
	}
	if s.LogFormat != nil {
		out.LogFormat = *s.LogFormat
	}
	if s.FrameInterval != nil {
		d, err := time.ParseDuration(*s.FrameInterval)
		if err != nil {
			return out, fmt.Errorf("invalid frame_interval: %w", err)
		}
		out.FrameInterval = d
	}
	return out, nil
}

func (l *Loader) translateComponent(ctx context.Context, dir string, c *componentBlock) (*config.Component, error) {
	def := &config.Component{Name: c.Name}

	switch {
	case c.Template != nil && c.TemplateFile != nil:
		return nil, fmt.Errorf("component '%s' sets both template and template_file", c.Name)
	case c.Template != nil:
		def.Template = *c.Template
	case c.TemplateFile != nil:
		raw, err := os.ReadFile(resolvePath(dir, *c.TemplateFile))
		if err != nil {
			return nil, fmt.Errorf("component '%s': failed to read template: %w", c.Name, err)
		}
		def.Template = string(raw)
	default:
		return nil, fmt.Errorf("component '%s' needs template or template_file", c.Name)
	}

	def.Data = make(map[string]cty.Value)
	if c.DataFile != nil {
		fileData, err := readDataFile(resolvePath(dir, *c.DataFile))
		if err != nil {
			return nil, fmt.Errorf("component '%s': %w", c.Name, err)
		}
		for k, v := range fileData {
			def.Data[k] = v
		}
	}
	if isExprDefined(ctx, c.Data, "data") {
		inline, err := objectAttrs(c.Data)
		if err != nil {
			return nil, fmt.Errorf("component '%s': data: %w", c.Name, err)
		}
		for k, v := range inline {
			def.Data[k] = v
		}
	}
	return def, nil
}

func (l *Loader) translateStep(ctx context.Context, s *stepBlock) (*config.Step, error) {
	step := &config.Step{Name: s.Name, Component: s.Component, Set: map[string]cty.Value{}}
	if isExprDefined(ctx, s.Set, "set") {
		set, err := objectAttrs(s.Set)
		if err != nil {
			return nil, fmt.Errorf("step '%s': set: %w", s.Name, err)
		}
		step.Set = set
	}
	return step, nil
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// findAllHCLFiles walks all given paths and returns a sorted list of the
// .hcl files found.
func findAllHCLFiles(paths []string) ([]string, error) {
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
	sort.Strings(allFiles)
	return allFiles, nil
}
