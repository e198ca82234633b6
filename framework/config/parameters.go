package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// parametersFile is the layout of a parameters file:
//
//	parameters:
//	  mailer.transport: sendmail
//	  mailer.hosts: [a.example.com, b.example.com]
type parametersFile struct {
	Parameters map[string]any `yaml:"parameters"`
}

// LoadParameters reads container parameters from a YAML file. A missing
// file yields no parameters and no error, like a missing .env.
func LoadParameters(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading parameters file: %w", err)
	}

	var file parametersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing parameters file %s: %w", path, err)
	}
	params := make(map[string]any, len(file.Parameters))
	for name, value := range file.Parameters {
		v, err := parameterValue(name, value)
		if err != nil {
			return nil, fmt.Errorf("parameters file %s: %w", path, err)
		}
		params[name] = v
	}
	return params, nil
}

// parameterValue converts a decoded YAML value into the types the container
// accepts. Timestamps become RFC 3339 strings and maps with non-string keys
// get their keys formatted. name is the dotted path used in errors.
func parameterValue(name string, value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return v, nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			iv, err := parameterValue(fmt.Sprintf("%s[%d]", name, i), item)
			if err != nil {
				return nil, err
			}
			out[i] = iv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			iv, err := parameterValue(name+"."+k, item)
			if err != nil {
				return nil, err
			}
			out[k] = iv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			key := fmt.Sprint(k)
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("parameter %q: key %q appears twice once formatted", name, key)
			}
			iv, err := parameterValue(name+"."+key, item)
			if err != nil {
				return nil, err
			}
			out[key] = iv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("parameter %q: unsupported type %T", name, value)
	}
}
