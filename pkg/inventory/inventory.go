// Package inventory loads named router definitions from a YAML file, so a
// scheduler can poll by name instead of repeating connection flags.
package inventory

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Router is one entry in the inventory file.
type Router struct {
	Model     string `yaml:"model"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port,omitempty"`      // 0 = transport default
	Transport string `yaml:"transport,omitempty"` // "telnet" (default) or "ssh"
	Username  string `yaml:"username,omitempty"`  // empty = device default
	Password  string `yaml:"password,omitempty"`
	TimeoutMS int    `yaml:"timeout_ms,omitempty"`
}

// Inventory maps router names to their definitions.
type Inventory struct {
	Routers map[string]Router `yaml:"routers"`
}

// Load parses an inventory YAML file and validates required fields.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory file: %w", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory YAML: %w", err)
	}

	if err := validate(&inv); err != nil {
		return nil, fmt.Errorf("validating inventory: %w", err)
	}

	return &inv, nil
}

func validate(inv *Inventory) error {
	if len(inv.Routers) == 0 {
		return fmt.Errorf("at least one router is required")
	}
	for name, r := range inv.Routers {
		if r.Model == "" {
			return fmt.Errorf("router %s: model is required", name)
		}
		if r.Host == "" {
			return fmt.Errorf("router %s: host is required", name)
		}
		switch r.Transport {
		case "", "telnet", "ssh":
		default:
			return fmt.Errorf("router %s: transport must be 'telnet' or 'ssh', got %q",
				name, r.Transport)
		}
		if r.TimeoutMS < 0 {
			return fmt.Errorf("router %s: timeout_ms must not be negative", name)
		}
	}
	return nil
}

// Get returns the named router definition.
func (inv *Inventory) Get(name string) (*Router, error) {
	r, ok := inv.Routers[name]
	if !ok {
		return nil, fmt.Errorf("router %q not in inventory (known: %v)", name, inv.Names())
	}
	return &r, nil
}

// Names lists the defined router names, sorted.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.Routers))
	for name := range inv.Routers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
