// Package loader builds flag environments from configuration documents and
// keeps them fresh when the backing file changes. It is the host-facing side
// of evaluation: the predicate core only sees the resulting FlagEnv.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	cfgpred "github.com/cfgpred/cfgpred-go"
)

// flagsDocument is the on-disk shape of a flag set. Entries are ordered and
// keys may repeat; a missing value declares a presence-only flag.
//
//	flags:
//	  - key: unix
//	  - key: target_pointer_width
//	    value: "32"
type flagsDocument struct {
	Flags []flagEntry `yaml:"flags" json:"flags"`
}

type flagEntry struct {
	Key   string  `yaml:"key" json:"key"`
	Value *string `yaml:"value" json:"value"`
}

// FromYAML builds a FlagEnv from a YAML flags document, preserving entry
// order and duplicate keys.
func FromYAML(data []byte) (cfgpred.FlagEnv, error) {
	var doc flagsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing flags document: %w", err)
	}
	return toEnv(doc.Flags)
}

// FromJSON builds a FlagEnv from the JSON form of the same document.
func FromJSON(data []byte) (cfgpred.FlagEnv, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing flags document: invalid JSON")
	}

	flags := gjson.GetBytes(data, "flags")
	if !flags.Exists() {
		return nil, fmt.Errorf("parsing flags document: missing \"flags\" field")
	}
	if !flags.IsArray() {
		return nil, fmt.Errorf("parsing flags document: \"flags\" is not an array")
	}

	var entries []flagEntry
	flags.ForEach(func(_, item gjson.Result) bool {
		entry := flagEntry{Key: item.Get("key").String()}
		if value := item.Get("value"); value.Exists() && value.Type != gjson.Null {
			s := value.String()
			entry.Value = &s
		}
		entries = append(entries, entry)
		return true
	})
	return toEnv(entries)
}

// LoadFile reads a flags file and dispatches on its extension
// (.yaml/.yml/.json).
func LoadFile(path string) (cfgpred.FlagEnv, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flags file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported flags file extension: %s", path)
	}
}

func toEnv(entries []flagEntry) (cfgpred.FlagEnv, error) {
	env := make(cfgpred.FlagEnv, 0, len(entries))
	for i, entry := range entries {
		if entry.Key == "" {
			return nil, fmt.Errorf("flags entry %d: missing key", i)
		}
		env = append(env, cfgpred.Flag{Key: entry.Key, Value: entry.Value})
	}
	return env, nil
}
