package main

import (
	"encoding/json"
	"fmt"
	"os"

	api "github.com/demmel/life-plus-plus/pkg/lifeplusplus"
)

// loadSessionFromConfig reads a session JSON file. Unknown keys are ignored.
//
//	{"population": 12, "kernel_size": 5, "layers": 2, "seed": 9,
//	 "selection": "rank", "seed_mode": "perlin", "view": {"width": 128, "height": 96}}
func loadSessionFromConfig(path string) (api.SessionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.SessionRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return api.SessionRequest{}, err
	}

	var req api.SessionRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["kernel_size"]); ok {
		req.KernelSize = v
	}
	if v, ok := asInt(raw["layers"]); ok {
		req.Layers = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asString(raw["selection"]); ok {
		req.Selection = v
	}
	if v, ok := asString(raw["seed_mode"]); ok {
		req.SeedMode = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if view, ok := raw["view"].(map[string]any); ok {
		if v, ok := asInt(view["width"]); ok {
			req.ViewWidth = v
		}
		if v, ok := asInt(view["height"]); ok {
			req.ViewHeight = v
		}
	}
	return req, nil
}

func loadOrDefaultSession(configPath string) (api.SessionRequest, error) {
	if configPath == "" {
		return api.SessionRequest{}, nil
	}
	req, err := loadSessionFromConfig(configPath)
	if err != nil {
		return api.SessionRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func applySessionFlag(req *api.SessionRequest, name string, v any) {
	switch name {
	case "run-id":
		req.RunID = *v.(*string)
	case "pop":
		req.Population = *v.(*int)
	case "kernel":
		req.KernelSize = *v.(*int)
	case "layers":
		req.Layers = *v.(*int)
	case "seed":
		req.Seed = *v.(*int64)
	case "selection":
		req.Selection = *v.(*string)
	case "seed-mode":
		req.SeedMode = *v.(*string)
	case "workers":
		req.Workers = *v.(*int)
	case "view-width":
		req.ViewWidth = *v.(*int)
	case "view-height":
		req.ViewHeight = *v.(*int)
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}
