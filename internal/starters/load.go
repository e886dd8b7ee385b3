package starters

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// LoadStarter reads a single starter from disk.
func LoadStarter(path string) (*Starter, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("starter path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read starter %s: %w", path, err)
	}

	s, err := parseStarter(data)
	if err != nil {
		return nil, fmt.Errorf("parse starter %s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// LoadStartersFromDir loads every *.yaml and *.yml starter in dir. A missing
// directory yields no starters.
func LoadStartersFromDir(dir string) ([]*Starter, error) {
	if strings.TrimSpace(dir) == "" {
		return []*Starter{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Starter{}, nil
		}
		return nil, fmt.Errorf("read starters dir %s: %w", dir, err)
	}

	starters := make([]*Starter, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		s, err := LoadStarter(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		starters = append(starters, s)
	}

	sortByName(starters)
	return starters, nil
}

// LoadBuiltinStarters returns the starters bundled with netforge.
func LoadBuiltinStarters() ([]*Starter, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin starters: %w", err)
	}

	starters := make([]*Starter, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin starter %s: %w", entry.Name(), err)
		}
		s, err := parseStarter(data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin starter %s: %w", entry.Name(), err)
		}
		s.Source = "builtin"
		starters = append(starters, s)
	}

	sortByName(starters)
	return starters, nil
}

// SearchPaths returns starter directories in precedence order.
func SearchPaths(projectDir, configDir string) []string {
	paths := make([]string, 0, 2)
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".netforge", "starters"))
	}
	if configDir != "" {
		paths = append(paths, filepath.Join(configDir, "starters"))
	}
	return paths
}

// LoadAll loads starters from the search paths and then the builtins. The
// first starter found under a name wins.
func LoadAll(projectDir, configDir string) ([]*Starter, error) {
	seen := make(map[string]struct{})
	resolved := make([]*Starter, 0)
	add := func(list []*Starter) {
		for _, s := range list {
			if _, exists := seen[s.Name]; exists {
				continue
			}
			seen[s.Name] = struct{}{}
			resolved = append(resolved, s)
		}
	}

	for _, dir := range SearchPaths(projectDir, configDir) {
		list, err := LoadStartersFromDir(dir)
		if err != nil {
			return nil, err
		}
		add(list)
	}

	builtins, err := LoadBuiltinStarters()
	if err != nil {
		return nil, err
	}
	add(builtins)

	sortByName(resolved)
	return resolved, nil
}

// Find returns the starter called name from list, or nil.
func Find(list []*Starter, name string) *Starter {
	for _, s := range list {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func parseStarter(data []byte) (*Starter, error) {
	var s Starter
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return nil, fmt.Errorf("starter name is required")
	}
	if strings.TrimSpace(s.Network) == "" {
		return nil, fmt.Errorf("starter network is required")
	}
	for i, v := range s.Variables {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return nil, fmt.Errorf("variable %d name is required", i)
		}
		s.Variables[i].Name = name
	}
	return &s, nil
}

func sortByName(list []*Starter) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
}

func sortedNames(values map[string]string) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
