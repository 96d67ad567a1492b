package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Preset is a battery file found in a preset directory.
type Preset struct {
	ID      string
	File    string
	Battery BatteryConfig
}

// ListBatteryPresets reads every *.yaml battery file in dir, sorted by ID.
// Unreadable or invalid files are returned in skipped rather than failing the listing.
func ListBatteryPresets(dir string) (presets []Preset, skipped map[string]error, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	skipped = map[string]error{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		b, err := LoadBatteryFile(path)
		if err != nil {
			skipped[path] = err
			continue
		}
		// "home_10kwh.yaml" -> "home_10kwh"
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		if b.Name == "" {
			b.Name = id
		}
		presets = append(presets, Preset{ID: id, File: path, Battery: b})
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].ID < presets[j].ID })
	return presets, skipped, nil
}

// PresetPath resolves a preset ID inside dir.
func PresetPath(dir, id string) string {
	return filepath.Join(dir, filepath.Base(id)+".yaml")
}
