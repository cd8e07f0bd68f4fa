package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "config"
	FilePath    string `json:"filePath"`    // Path to the JSON file (config type only)
	Animated    bool   `json:"animated"`    // Renders more than one frame
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// ListBuiltInScenes describes every preset
func ListBuiltInScenes() []SceneInfo {
	var scenes []SceneInfo
	for _, name := range Names() {
		s, _ := Create(name)
		scenes = append(scenes, SceneInfo{
			ID:          name,
			Name:        titleCase(name),
			DisplayName: titleCase(name),
			Description: s.Description,
			Group:       "Built-in Scenes",
			Type:        "builtin",
			Animated:    s.Animation.FrameCount > 1,
		})
	}
	return scenes
}

// ListConfigScenes scans dir for JSON scene files. A missing directory yields
// an empty list. Files that fail to load are skipped.
func ListConfigScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, file := range files {
		s, err := LoadConfig(file, nil)
		if err != nil {
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		name := s.Name
		if name == "" || name == "default" {
			name = stem
		}
		scenes = append(scenes, SceneInfo{
			ID:          "config:" + stem,
			Name:        name,
			DisplayName: titleCase(name),
			Description: s.Description,
			Group:       "Config Scenes",
			Type:        "config",
			FilePath:    file,
			Animated:    s.Animation.FrameCount > 1,
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ListAllScenes returns built-in and config scenes, grouped by category
func ListAllScenes(dir string) (ScenesResponse, error) {
	response := ScenesResponse{
		Groups: []SceneGroup{{Name: "Built-in Scenes", Scenes: ListBuiltInScenes()}},
	}

	configScenes, err := ListConfigScenes(dir)
	if err != nil {
		return response, err
	}
	if len(configScenes) > 0 {
		response.Groups = append(response.Groups, SceneGroup{Name: "Config Scenes", Scenes: configScenes})
	}
	return response, nil
}

// Resolve returns the scene for an ID produced by ListAllScenes
func Resolve(id, dir string) (*Scene, error) {
	if stem, ok := strings.CutPrefix(id, "config:"); ok {
		if stem == "" || strings.ContainsAny(stem, `/\`) {
			return nil, fmt.Errorf("invalid config scene id %q", id)
		}
		return LoadConfig(filepath.Join(dir, stem+".json"), nil)
	}
	return Create(id)
}

// titleCase converts "edge-on" to "Edge On"
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}
