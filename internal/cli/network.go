package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opencode-ai/netforge/internal/documents"
	"github.com/opencode-ai/netforge/internal/hocon"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/state"
)

// defaultLLM returns the configured model and temperature for new networks.
func defaultLLM() models.LLMConfig {
	cfg := GetConfig()
	return models.LLMConfig{
		ModelName:   models.ResolveModelName(cfg.Editor.DefaultModel),
		Temperature: cfg.Editor.Temperature,
	}
}

// readDocument reads path, or stdin when path is "-".
func readDocument(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// bindingsState builds a state holding the bindings of a variables file
// followed by name=value pairs.
func bindingsState(varsPath string, pairs []string) (*state.AppState, error) {
	st := state.New(defaultLLM())
	if varsPath != "" {
		text, err := readDocument(varsPath)
		if err != nil {
			return nil, err
		}
		if _, err := documents.ImportVariables(st, varsPath, text); err != nil {
			return nil, err
		}
	}
	for _, pair := range pairs {
		name, value, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		st.AddBinding(name, value)
	}
	return st, nil
}

func splitPair(pair string) (string, string, error) {
	name, value, ok := strings.Cut(pair, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid --set %q: expected name=value", pair)
	}
	return name, value, nil
}

// parsePairs turns name=value pairs into a map; later pairs win.
func parsePairs(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	return values, nil
}

// loadNetwork imports a network document, expanding placeholders with the
// given bindings.
func loadNetwork(path, varsPath string, pairs []string) (*state.AppState, error) {
	vars, err := bindingsState(varsPath, pairs)
	if err != nil {
		return nil, err
	}
	text, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	st, err := documents.ImportNetwork(vars, path, text)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("file", path).
		Int("nodes", len(st.Nodes)).
		Int("functions", len(st.Functions)).
		Int("bindings", len(st.Bindings)).
		Msg("network loaded")
	return st, nil
}

// outputFormat resolves --format against the configured default.
func outputFormat(flag string) (hocon.Format, error) {
	if flag == "" {
		flag = GetConfig().Editor.OutputFormat
	}
	return hocon.ParseFormat(flag)
}

// emitDocument renders tree to outPath, or to w when outPath is empty.
func emitDocument(w io.Writer, tree map[string]any, format hocon.Format, outPath string) error {
	data, err := documents.Render(tree, format)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logger.Info().Str("file", outPath).Str("format", string(format)).Msg("document written")
	return nil
}
