package favorites

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const schemaV2 = `{
  "type": "object",
  "required": ["version", "categories"],
  "properties": {
    "version": {"const": 2},
    "categories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "keys"],
        "properties": {
          "name": {"type": "string"},
          "keys": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

// schemaFlatSet matches version 0 data: a bare list of favorited keys.
const schemaFlatSet = `{
  "type": "array",
  "items": {"type": "string"}
}`

// schemaCategoryMap matches version 1 data: category name -> keys.
const schemaCategoryMap = `{
  "type": "object",
  "additionalProperties": {"type": "array", "items": {"type": "string"}}
}`

var (
	loaderV2          = gojsonschema.NewStringLoader(schemaV2)
	loaderFlatSet     = gojsonschema.NewStringLoader(schemaFlatSet)
	loaderCategoryMap = gojsonschema.NewStringLoader(schemaCategoryMap)
)

// ErrUnknownShape is returned when persisted data matches no known version.
var ErrUnknownShape = errors.New("favorites: unrecognized persisted data")

// Migrate decodes persisted favorites of any known version into the current
// document. It runs once, at load.
func Migrate(raw string) (Document, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return emptyDocument(), CurrentVersion, nil
	}

	version, err := detectVersion(raw)
	if err != nil {
		return Document{}, -1, err
	}

	var doc Document
	switch version {
	case CurrentVersion:
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return Document{}, version, fmt.Errorf("failed to decode favorites: %w", err)
		}
	case 1:
		cats, err := decodeOrderedCategoryMap(raw)
		if err != nil {
			return Document{}, version, err
		}
		doc.Categories = cats
	case 0:
		var keys []string
		if err := json.Unmarshal([]byte(raw), &keys); err != nil {
			return Document{}, version, fmt.Errorf("failed to decode legacy favorites: %w", err)
		}
		doc.Categories = []Category{{Name: DefaultCategory, Keys: keys}}
	}

	return normalizeDocument(doc), version, nil
}

func detectVersion(raw string) (int, error) {
	doc := gojsonschema.NewStringLoader(raw)

	candidates := []struct {
		version int
		schema  gojsonschema.JSONLoader
	}{
		{CurrentVersion, loaderV2},
		{0, loaderFlatSet},
		{1, loaderCategoryMap},
	}

	for _, c := range candidates {
		result, err := gojsonschema.Validate(c.schema, doc)
		if err != nil {
			// Not even valid JSON.
			return -1, fmt.Errorf("%w: %v", ErrUnknownShape, err)
		}
		if result.Valid() {
			return c.version, nil
		}
	}

	return -1, ErrUnknownShape
}

// decodeOrderedCategoryMap reads a JSON object of category -> keys keeping the
// order categories were written in.
func decodeOrderedCategoryMap(raw string) ([]Category, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read legacy favorites: %w", err)
	}

	var cats []Category
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read legacy category: %w", err)
		}
		name, _ := tok.(string)

		var keys []string
		if err := dec.Decode(&keys); err != nil {
			return nil, fmt.Errorf("failed to read legacy category %q: %w", name, err)
		}
		cats = append(cats, Category{Name: name, Keys: keys})
	}

	return cats, nil
}
