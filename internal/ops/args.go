package ops

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/imagedit/internal/scene"
)

// Arguments arrive either as Go values from in-process callers or as JSON-decoded values
// (float64, string, []any, map[string]any) from the transports.

func argAt(args []any, i int, name string) (any, error) {
	if i >= len(args) || args[i] == nil {
		return nil, fmt.Errorf("%w: missing %s", scene.ErrInvalidParameter, name)
	}
	return args[i], nil
}

func argString(args []any, i int, name string) (string, error) {
	v, err := argAt(args, i, name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string, got %T", scene.ErrInvalidParameter, name, v)
	}
	return s, nil
}

func optString(args []any, i int) string {
	if i < len(args) {
		if s, ok := args[i].(string); ok {
			return s
		}
	}
	return ""
}

func argFloat(args []any, i int, name string) (float64, error) {
	v, err := argAt(args, i, name)
	if err != nil {
		return 0, err
	}
	f, ok := scene.ToFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number, got %T", scene.ErrInvalidParameter, name, v)
	}
	return f, nil
}

func argProps(args []any, i int, name string) (scene.Props, error) {
	v, err := argAt(args, i, name)
	if err != nil {
		return nil, err
	}
	switch p := v.(type) {
	case scene.Props:
		return p, nil
	case map[string]any:
		return scene.Props(p), nil
	}
	return nil, fmt.Errorf("%w: %s must be an object, got %T", scene.ErrInvalidParameter, name, v)
}

func optProps(args []any, i int, name string) (scene.Props, error) {
	if i >= len(args) || args[i] == nil {
		return scene.Props{}, nil
	}
	return argProps(args, i, name)
}

// argIDs accepts one id or a list of ids.
func argIDs(args []any, i int, name string) ([]string, error) {
	v, err := argAt(args, i, name)
	if err != nil {
		return nil, err
	}
	switch ids := v.(type) {
	case string:
		if ids != "" {
			return []string{ids}, nil
		}
	case []string:
		if len(ids) > 0 {
			return ids, nil
		}
	case []any:
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			s, ok := id.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("%w: %s must hold string ids", scene.ErrInvalidParameter, name)
			}
			out = append(out, s)
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be an id or a list of ids", scene.ErrInvalidParameter, name)
}

// decodeArg returns args[i] as V, converting JSON-shaped values through encoding/json.
func decodeArg[V any](args []any, i int, name string) (V, error) {
	var out V
	v, err := argAt(args, i, name)
	if err != nil {
		return out, err
	}
	if typed, ok := v.(V); ok {
		return typed, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("%w: %s: %v", scene.ErrInvalidParameter, name, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", scene.ErrInvalidParameter, name, err)
	}
	return out, nil
}
