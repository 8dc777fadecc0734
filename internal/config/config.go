// Package config loads optional YAML defaults for command-line flags.
//
// A file like
//
//	debug: true
//	api_url: https://example.test
//	timeout: 10s
//	read:
//	  full: true
//
// sets flag defaults by flag name, with dashes written as underscores.
// Command-specific flags may also be nested under the command name.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/tokumei/internal/constants"
)

// LocalFile is read from the working directory after the user-level file.
const LocalFile = "tokumei.yaml"

// Paths lists the candidate config files. TOKUMEI_CONFIG_FILE replaces the
// defaults entirely. Missing files are skipped by kong.
func Paths() []string {
	if p := strings.TrimSpace(os.Getenv(constants.EnvConfigFile)); p != "" {
		return []string{p}
	}
	return []string{constants.DefaultConfigFile, LocalFile}
}

// Option wires the YAML loader into a kong parser.
func Option() kong.Option {
	return kong.Configuration(YAML, Paths()...)
}

// YAML is a kong.ConfigurationLoader for YAML documents.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	var f kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		name := strings.ReplaceAll(flag.Name, "-", "_")

		// command-scoped keys win over top-level ones
		if parent != nil && parent.Command != nil {
			if section, ok := lookup(values, commandPath(parent.Command)); ok {
				if m, ok := section.(map[string]any); ok {
					if raw, ok := m[name]; ok {
						return normalize(raw), nil
					}
				}
			}
		}
		if raw, ok := values[name]; ok {
			return normalize(raw), nil
		}
		return nil, nil
	}
	return f, nil
}

func commandPath(node *kong.Node) []string {
	var parts []string
	for n := node; n != nil && n.Type == kong.CommandNode; n = n.Parent {
		parts = append([]string{strings.ReplaceAll(n.Name, "-", "_")}, parts...)
	}
	return parts
}

func lookup(values map[string]any, path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur any = values
	for _, part := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// normalize turns scalars into the string form kong's mappers accept for
// every flag type.
func normalize(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case string, bool:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
