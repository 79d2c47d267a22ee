package services

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

//go:embed recipes/fyralath.yaml
var defaultRecipe []byte

// LoadRecipe reads a bill of materials from a YAML (or JSON) file.
// An empty path returns the built-in Fyr'alath recipe.
func LoadRecipe(path string) (*models.BillOfMaterialsNode, error) {
	data := defaultRecipe
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read recipe: %w", err)
		}
	}
	return ParseRecipe(data)
}

// ParseRecipe decodes and validates a bill of materials document
func ParseRecipe(data []byte) (*models.BillOfMaterialsNode, error) {
	var root models.BillOfMaterialsNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}
	return &root, nil
}
