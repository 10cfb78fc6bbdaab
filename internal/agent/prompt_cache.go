package agent

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sync"
	"text/template"
)

//go:embed prompts/*.tmpl
var embeddedPrompts embed.FS

// PromptCache caches parsed prompt templates to avoid repeated reads
type PromptCache struct {
	mu        sync.RWMutex
	fsys      fs.FS
	templates map[string]*template.Template
	raw       map[string]string
}

// NewPromptCache creates a prompt cache reading from fsys. A nil fsys
// uses the prompts compiled into the binary.
func NewPromptCache(fsys fs.FS) *PromptCache {
	if fsys == nil {
		sub, err := fs.Sub(embeddedPrompts, "prompts")
		if err != nil {
			panic(err) // embedded directory always exists
		}
		fsys = sub
	}
	return &PromptCache{
		fsys:      fsys,
		templates: make(map[string]*template.Template),
		raw:       make(map[string]string),
	}
}

// LoadPrompt loads a prompt from fsys or cache
func (pc *PromptCache) LoadPrompt(name string) (string, error) {
	pc.mu.RLock()
	if content, ok := pc.raw[name]; ok {
		pc.mu.RUnlock()
		return content, nil
	}
	pc.mu.RUnlock()

	content, err := fs.ReadFile(pc.fsys, name)
	if err != nil {
		return "", fmt.Errorf("reading prompt file: %w", err)
	}

	pc.mu.Lock()
	pc.raw[name] = string(content)
	pc.mu.Unlock()

	return string(content), nil
}

// LoadTemplate loads and parses a template from fsys or cache
func (pc *PromptCache) LoadTemplate(name string) (*template.Template, error) {
	pc.mu.RLock()
	if tmpl, ok := pc.templates[name]; ok {
		pc.mu.RUnlock()
		return tmpl, nil
	}
	pc.mu.RUnlock()

	content, err := pc.LoadPrompt(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	pc.mu.Lock()
	pc.templates[name] = tmpl
	pc.mu.Unlock()

	return tmpl, nil
}

// Render executes the named template with data.
func (pc *PromptCache) Render(name string, data any) (string, error) {
	tmpl, err := pc.LoadTemplate(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Clear removes all cached prompts and templates
func (pc *PromptCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.templates = make(map[string]*template.Template)
	pc.raw = make(map[string]string)
}

// Preload loads multiple prompts into cache
func (pc *PromptCache) Preload(names []string) error {
	for _, name := range names {
		if _, err := pc.LoadTemplate(name); err != nil {
			return fmt.Errorf("preloading %s: %w", name, err)
		}
	}
	return nil
}

// Stats returns cache statistics
func (pc *PromptCache) Stats() (templates int, raw int) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return len(pc.templates), len(pc.raw)
}
