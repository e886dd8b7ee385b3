package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrConfigExists is returned by WriteTemplate when the file is already
// present and force is not set.
var ErrConfigExists = errors.New("config file already exists")

// Template is the commented config file written by "netforge init".
const Template = `# Netforge Configuration File
#
# Every key can be overridden with an environment variable, for example
# NETFORGE_SERVER_PORT=9000.

logging:
  # trace, debug, info, warn or error
  level: info
  # auto picks console output on a terminal and json otherwise
  format: auto

editor:
  default_model: gpt-4o
  temperature: 0.5
  network_file: network.hocon
  function_file: functions.hocon
  variables_file: variables.hocon
  # hocon, json or yaml
  output_format: hocon

server:
  host: 127.0.0.1
  port: 8765
  max_body_bytes: 1048576
  shutdown_timeout: 10s
`

// WriteTemplate writes Template to config.yaml inside dir and returns the
// file path.
func WriteTemplate(dir string, force bool) (string, error) {
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil && !force {
		return path, ErrConfigExists
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
