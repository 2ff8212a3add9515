// Package config loads the process-wide client configuration: API
// hosts, the document-service address, the identity-provider project
// and the selectable persona list.
//
// Configuration is read once per command invocation and treated as
// read-only afterwards. A missing or unreadable file is not fatal;
// callers fall back to Default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given file, then overlays
// environment variable overrides (DOCCHAT_*). The file format is
// chosen by extension: .json or .yml/.yaml.
// A missing file yields the defaults plus env overrides; a present but
// unparsable file is an error so the caller can report it and keep the
// defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables, with "__" separating nesting
	// levels so keys like custom_host stay addressable:
	// DOCCHAT_API__CUSTOM_HOST -> api.custom_host.
	if err := k.Load(env.Provider("DOCCHAT_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DOCCHAT_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// parserFor picks the koanf parser matching the file extension.
// JSON is the default since config.json is the canonical form.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return koanfyaml.Parser()
	default:
		return koanfjson.Parser()
	}
}

// Save writes the configuration to the given path, as JSON or YAML
// depending on the extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		data, err = yamlv3.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration can drive the client.
func (c *Config) Validate() error {
	if c.API.Host == "" {
		return fmt.Errorf("api.host is required")
	}
	if c.API.CustomHost == "" {
		return fmt.Errorf("api.custom_host is required")
	}
	if c.DocAPI.Host == "" {
		return fmt.Errorf("doc_api.host is required")
	}
	seen := map[int]bool{}
	for _, b := range c.Chatbots {
		if b.BotID == "" {
			return fmt.Errorf("chatbot %d: bot_id is required", b.ID)
		}
		if seen[b.ID] {
			return fmt.Errorf("chatbot %d: duplicate id", b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}
