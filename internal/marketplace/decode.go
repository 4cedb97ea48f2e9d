package marketplace

import (
	"encoding/json"

	"github.com/draze/draze-cli/internal/fetch"
)

func decodeObject[T any](body []byte, path string) (T, error) {
	var out T
	raw, err := fetch.ExtractObject(body, path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &fetch.DecodeError{Shape: path, Reason: err.Error()}
	}
	return out, nil
}
