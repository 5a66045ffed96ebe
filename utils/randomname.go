package utils

import (
	"math/rand"
	"os"
	"path/filepath"

	"github.com/Pallinder/go-randomdata"
)

// RandomNameGenerator hands out silly names, never the same one twice.
type RandomNameGenerator struct {
	used map[string]struct{}
}

func NewRandomNameGenerator(seed int64) *RandomNameGenerator {
	randomdata.CustomRand(rand.New(rand.NewSource(seed)))
	return &RandomNameGenerator{used: make(map[string]struct{})}
}

func (rng *RandomNameGenerator) RandomName() string {
	for {
		name := randomdata.SillyName()
		// avoid duplicate names
		if _, exists := rng.used[name]; !exists {
			rng.used[name] = struct{}{}
			return name
		}
	}
}

// FreeFileName returns a path in dir named by RandomName that does not exist yet.
func (rng *RandomNameGenerator) FreeFileName(dir, ext string) string {
	for {
		path := filepath.Join(dir, rng.RandomName()+ext)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}
