package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is one named seeding profile.
type Preset struct {
	Name               string  `yaml:"name"`
	Users              int     `yaml:"users"`
	Posts              int     `yaml:"posts"`
	FollowProbability  float64 `yaml:"follow_probability"`
	MaxLikesPerPost    int     `yaml:"max_likes_per_post"`
	MaxCommentsPerPost int     `yaml:"max_comments_per_post"`
	SavesPerUser       int     `yaml:"saves_per_user"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

//go:embed presets.yml
var builtinPresets []byte

// ParsePresets decodes a presets document and checks each entry.
func ParsePresets(data []byte) (map[string]Preset, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	out := make(map[string]Preset, len(file.Presets))
	for _, p := range file.Presets {
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := out[p.Name]; dup {
			return nil, fmt.Errorf("preset %q defined twice", p.Name)
		}
		out[p.Name] = p
	}
	return out, nil
}

// LoadPresets returns the built-in presets, overlaid with the ones in path
// when path is not empty.
func LoadPresets(path string) (map[string]Preset, error) {
	presets, err := ParsePresets(builtinPresets)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return presets, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	custom, err := ParsePresets(data)
	if err != nil {
		return nil, err
	}
	for name, p := range custom {
		presets[name] = p
	}
	return presets, nil
}

func (p Preset) validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("preset without a name")
	case p.Users < 0 || p.Posts < 0 || p.MaxLikesPerPost < 0 || p.MaxCommentsPerPost < 0 || p.SavesPerUser < 0:
		return fmt.Errorf("preset %q: counts must not be negative", p.Name)
	case p.FollowProbability < 0 || p.FollowProbability > 1:
		return fmt.Errorf("preset %q: follow_probability must be within [0, 1]", p.Name)
	}
	return nil
}
