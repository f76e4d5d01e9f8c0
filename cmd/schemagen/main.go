// Command schemagen regenerates the client message schemas from the protocol
// structs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/invopop/jsonschema"

	"craftage.ai/internal/protocol"
)

var messages = map[string]any{
	"hello":   new(protocol.HelloMsg),
	"craft":   new(protocol.CraftMsg),
	"consume": new(protocol.ConsumeMsg),
	"gather":  new(protocol.GatherMsg),
	"state":   new(protocol.StateMsg),
}

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write <name>.schema.json files (default: stdout)")
	flag.Parse()

	if outDir == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, name := range names() {
			if err := enc.Encode(buildSchema(messages[name])); err != nil {
				fmt.Fprintf(os.Stderr, "failed to encode %s schema: %v\n", name, err)
				os.Exit(1)
			}
		}
		return
	}
	for _, name := range names() {
		v := messages[name]
		if err := writeSchema(filepath.Join(outDir, name+".schema.json"), buildSchema(v)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s schema: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func names() []string {
	out := make([]string, 0, len(messages))
	for name := range messages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func buildSchema(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	return reflector.Reflect(v)
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	return os.Rename(tmpPath, outPath)
}
