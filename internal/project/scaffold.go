package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template describes a starter file written into a fresh workspace.
type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Filename    string `yaml:"filename"`
	Content     string `yaml:"content"`
}

// registryFile is the YAML structure of a user templates file.
type registryFile struct {
	Templates []Template `yaml:"templates"`
}

// builtinTemplates ship with deskpin and are always available.
var builtinTemplates = []Template{
	{
		Name:        "article",
		Description: "Single-file article",
		Filename:    "main.tex",
		Content: `\documentclass{article}

\title{New Document}
\author{}
\date{\today}

\begin{document}
\maketitle

\end{document}
`,
	},
	{
		Name:        "report",
		Description: "Chaptered report",
		Filename:    "main.tex",
		Content: `\documentclass{report}

\title{New Report}
\author{}
\date{\today}

\begin{document}
\maketitle
\tableofcontents

\chapter{Introduction}

\end{document}
`,
	},
	{
		Name:        "blank",
		Description: "Empty source file",
		Filename:    "main.tex",
		Content:     "",
	},
}

// Registry resolves template names to starter content. User templates from
// templates.yaml shadow built-ins with the same name.
type Registry struct {
	templates []Template
}

// LoadRegistry builds a Registry from the built-ins plus an optional user
// file. A missing or unparseable user file just yields the built-ins.
func LoadRegistry(userPath string) *Registry {
	reg := &Registry{templates: append([]Template(nil), builtinTemplates...)}

	data, err := os.ReadFile(userPath)
	if err != nil {
		return reg
	}
	var rf registryFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		log.Warn("templates file unreadable, using built-ins", "path", userPath, "err", err)
		return reg
	}

	for _, t := range rf.Templates {
		if t.Name == "" || t.Filename == "" {
			continue
		}
		replaced := false
		for i := range reg.templates {
			if reg.templates[i].Name == t.Name {
				reg.templates[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			reg.templates = append(reg.templates, t)
		}
	}
	return reg
}

// Templates returns every known template in registration order.
func (r *Registry) Templates() []Template {
	return append([]Template(nil), r.templates...)
}

// Get resolves a template by name.
func (r *Registry) Get(name string) (Template, bool) {
	for _, t := range r.templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// validWorkspaceName returns true if name is safe as a directory component.
func validWorkspaceName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.Contains(name, "/") && !strings.Contains(name, "\\")
}

// Scaffolder creates workspace folders with starter content and registers
// them in the store.
type Scaffolder struct {
	store *Store
	reg   *Registry
}

// NewScaffolder creates a Scaffolder.
func NewScaffolder(store *Store, reg *Registry) *Scaffolder {
	return &Scaffolder{store: store, reg: reg}
}

// Create makes parentDir/name, writes the template's starter file, and
// registers the workspace. The directory must not already exist.
func (s *Scaffolder) Create(name, parentDir, templateName string) (*Workspace, error) {
	if !validWorkspaceName(name) {
		return nil, fmt.Errorf("invalid workspace name: %q", name)
	}
	tpl, ok := s.reg.Get(templateName)
	if !ok {
		return nil, fmt.Errorf("unknown template: %q", templateName)
	}

	dir := filepath.Join(parentDir, name)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("workspace directory already exists: %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, tpl.Filename), []byte(tpl.Content), 0o644); err != nil {
		return nil, fmt.Errorf("write starter file: %w", err)
	}

	ws := &Workspace{Name: name, Path: dir, Template: tpl.Name}
	if err := s.store.Save(ws); err != nil {
		return nil, err
	}
	log.Info("workspace created", "name", name, "path", dir, "template", tpl.Name)
	return ws, nil
}
