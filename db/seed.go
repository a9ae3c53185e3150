package db

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"notes-api/models"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the initial content of an empty store. Notes name their owner by
// user name so fixtures stay independent of assigned ids.
type Seed struct {
	Users []models.User `yaml:"users"`
	Notes []SeedNote    `yaml:"notes"`
}

type SeedNote struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	Owner   string `yaml:"owner"`
}

// LoadSeed reads a YAML fixture from path, or the embedded default when path
// is empty.
func LoadSeed(path string) (Seed, error) {
	data := defaultSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Seed{}, fmt.Errorf("read seed file: %w", err)
		}
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

// ApplySeed inserts seed into store if the store has no users yet. hash turns
// each fixture password into the stored credential. It reports whether
// anything was written.
func ApplySeed(store Store, seed Seed, hash func(string) (string, error)) (bool, error) {
	stats, err := store.Stats()
	if err != nil {
		return false, err
	}
	if stats.Users > 0 {
		return false, nil
	}

	owners := make(map[string]int, len(seed.Users))
	for _, u := range seed.Users {
		password, err := hash(u.Password)
		if err != nil {
			return false, fmt.Errorf("hash password for %s: %w", u.Name, err)
		}
		id, err := store.InsertUser(u.Name, u.Email, password, u.IsAdmin)
		if err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.Name, err)
		}
		owners[u.Name] = id
	}

	for _, n := range seed.Notes {
		ownerID, ok := owners[n.Owner]
		if !ok {
			return false, fmt.Errorf("seed note %q: unknown owner %q", n.Title, n.Owner)
		}
		if _, err := store.InsertNote(n.Title, n.Content, ownerID); err != nil {
			return false, fmt.Errorf("seed note %q: %w", n.Title, err)
		}
	}
	return true, nil
}
