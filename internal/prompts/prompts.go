// Package prompts loads the LLM prompt templates embedded in the binary.
// Templates live in a JSON file keyed by name and use {{.Key}} placeholders
// filled in at call time, so prompt wording can change without touching
// generation code.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed data/prompts.json
var dataFS embed.FS

var (
	loadOnce sync.Once
	loadErr  error
	catalog  map[string]string
)

func load() {
	raw, err := dataFS.ReadFile("data/prompts.json")
	if err != nil {
		loadErr = err
		return
	}
	if err := json.Unmarshal(raw, &catalog); err != nil {
		loadErr = fmt.Errorf("prompts: parse prompts.json: %w", err)
	}
}

// Get returns the raw template for the given name.
func Get(name string) (string, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return "", loadErr
	}
	tmpl, ok := catalog[name]
	if !ok {
		return "", fmt.Errorf("prompts: unknown prompt %q", name)
	}
	return tmpl, nil
}

// Format returns the named template with every {{.Key}} placeholder
// replaced by its value. Placeholders without a value are left in place so
// a missing field is visible in the output rather than silently dropped.
func Format(name string, values map[string]string) (string, error) {
	tmpl, err := Get(name)
	if err != nil {
		return "", err
	}
	for key, value := range values {
		tmpl = strings.ReplaceAll(tmpl, "{{."+key+"}}", value)
	}
	return tmpl, nil
}
