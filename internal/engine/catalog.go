// Package engine provides the catalog of known recognition engines.
// The catalog ships embedded in the binary as YAML; users can bypass it
// entirely with a raw command override.
package engine

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed engines.yaml
var catalogData []byte

// Engine describes one recognition engine invocation: the binary, its
// argument template, and how the produced text file is named.
type Engine struct {
	Name        string   `yaml:"name"`        // Catalog identifier (e.g. "tesseract")
	Description string   `yaml:"description"` // One-line human description
	Binary      string   `yaml:"binary"`      // Executable name looked up on PATH
	Args        []string `yaml:"args"`        // Argument template; {input} and {output} are substituted
	OutputExt   string   `yaml:"output_ext"`  // Extension the engine appends to the output basename
	SupportsPSM bool     `yaml:"supports_psm"`
}

// catalog mirrors the embedded YAML document.
type catalog struct {
	Version string   `yaml:"version"`
	Default string   `yaml:"default"`
	Engines []Engine `yaml:"engines"`
}

// Catalog provides lookup over the embedded engine definitions.
type Catalog struct {
	defaultName string
	engines     map[string]Engine
	order       []string
}

// LoadCatalog parses the embedded engine catalog.
func LoadCatalog() (*Catalog, error) {
	var doc catalog
	if err := yaml.Unmarshal(catalogData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse embedded engine catalog: %w", err)
	}

	c := &Catalog{
		defaultName: doc.Default,
		engines:     make(map[string]Engine, len(doc.Engines)),
	}
	for _, e := range doc.Engines {
		if _, exists := c.engines[e.Name]; exists {
			return nil, fmt.Errorf("duplicate engine %q in catalog", e.Name)
		}
		c.engines[e.Name] = e
		c.order = append(c.order, e.Name)
	}

	if _, ok := c.engines[c.defaultName]; !ok {
		return nil, fmt.Errorf("catalog default %q is not a defined engine", c.defaultName)
	}

	return c, nil
}

// Default returns the catalog's default engine.
func (c *Catalog) Default() Engine {
	return c.engines[c.defaultName]
}

// Lookup returns the engine with the given name.
func (c *Catalog) Lookup(name string) (Engine, error) {
	e, ok := c.engines[name]
	if !ok {
		return Engine{}, fmt.Errorf("unknown recognition engine %q (known: %s)", name, strings.Join(c.order, ", "))
	}
	return e, nil
}

// Names returns the engine names in catalog order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// FromCommand builds an ad-hoc engine from a raw user command such as
// "tesseract -l deu". The input path and output basename are appended unless
// the command already uses the {input}/{output} placeholders.
func FromCommand(raw string) (Engine, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Engine{}, fmt.Errorf("empty recognition command")
	}

	args := fields[1:]
	hasInput := false
	hasOutput := false
	for _, a := range args {
		if strings.Contains(a, "{input}") {
			hasInput = true
		}
		if strings.Contains(a, "{output}") {
			hasOutput = true
		}
	}
	if !hasInput {
		args = append(args, "{input}")
	}
	if !hasOutput {
		args = append(args, "{output}")
	}

	return Engine{
		Name:      "custom",
		Binary:    fields[0],
		Args:      args,
		OutputExt: ".txt",
	}, nil
}

// BuildArgs instantiates the argument template for one recognition call.
// psm is appended as a tesseract --psm flag when the engine supports it and
// the value is positive.
func (e Engine) BuildArgs(input, outputBase string, psm int) []string {
	args := make([]string, 0, len(e.Args)+2)
	for _, a := range e.Args {
		a = strings.ReplaceAll(a, "{input}", input)
		a = strings.ReplaceAll(a, "{output}", outputBase)
		args = append(args, a)
	}
	if e.SupportsPSM && psm > 0 {
		args = append(args, "--psm", strconv.Itoa(psm))
	}
	return args
}

// OutputFile returns the text file the engine writes for the given output
// basename.
func (e Engine) OutputFile(outputBase string) string {
	return outputBase + e.OutputExt
}
