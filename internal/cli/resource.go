package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"sigs.k8s.io/yaml"
)

// LoadPayloadFile reads a YAML or JSON file and returns it as a JSON object.
func LoadPayloadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %v", err)
	}
	if !gjson.ParseBytes(jsonData).IsObject() {
		return nil, fmt.Errorf("%s must contain a single object", filename)
	}
	return jsonData, nil
}

// ApplySets applies each --set to the JSON object payload. key=value stores value as
// a string; key:=value stores it as raw JSON, for numbers and booleans. Keys may be
// gjson style paths such as address.city.
func ApplySets(payload []byte, sets []string) ([]byte, error) {
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	var err error
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		raw := strings.HasSuffix(key, ":")
		key = strings.TrimSpace(strings.TrimSuffix(key, ":"))
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value or key:=json", kv)
		}
		if raw {
			if !gjson.Valid(value) {
				return nil, fmt.Errorf("invalid --set %q: value is not JSON", kv)
			}
			payload, err = sjson.SetRawBytes(payload, key, []byte(value))
		} else {
			payload, err = sjson.SetBytes(payload, key, value)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %v", kv, err)
		}
	}
	return payload, nil
}

// decodePayload decodes a JSON payload into a form struct, rejecting unknown fields.
// Numbers and booleans given for string fields, as YAML produces for an unquoted
// mobile: 9000000001, are taken as their text.
func decodePayload(payload []byte, v any) error {
	payload, err := stringifyScalars(payload, v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return fmt.Errorf("invalid payload: %s must be a %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return fmt.Errorf("invalid payload: %v", err)
	}
	return nil
}

func stringifyScalars(payload []byte, v any) ([]byte, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return payload, nil
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Type.Kind() != reflect.String {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		r := gjson.GetBytes(payload, name)
		if r.Type != gjson.Number && r.Type != gjson.True && r.Type != gjson.False {
			continue
		}
		var err error
		if payload, err = sjson.SetBytes(payload, name, r.Raw); err != nil {
			return nil, fmt.Errorf("invalid payload: %v", err)
		}
	}
	return payload, nil
}
