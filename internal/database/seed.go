package database

import (
	"context"
	"fmt"
	"os"

	"github.com/franckalain/foodrescue/internal/models"
	"gopkg.in/yaml.v3"
)

// ngoSeed is the layout of the NGO seed file
type ngoSeed struct {
	NGOs []*models.NGO `yaml:"ngos"`
}

// LoadNGOSeed reads a YAML file listing partner NGOs
func LoadNGOSeed(path string) ([]*models.NGO, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed ngoSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, ngo := range seed.NGOs {
		if ngo.ID == "" || ngo.Name == "" || ngo.Address == "" {
			return nil, fmt.Errorf("seed entry %d: id, name and address are required", i)
		}
	}
	return seed.NGOs, nil
}

// SeedNGOs upserts every NGO so that restarting with the same file is a no-op
func SeedNGOs(ctx context.Context, db DB, ngos []*models.NGO) error {
	for _, ngo := range ngos {
		if err := db.SaveNGO(ctx, ngo); err != nil {
			return fmt.Errorf("failed to seed NGO %s: %w", ngo.ID, err)
		}
	}
	return nil
}
