package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Shared definitions referenced by every request schema.
const schemaDefinitions = `{
  "nullableNumber": {"type": ["number", "null"]},
  "nullableCount": {"type": ["integer", "null"], "minimum": 0},
  "count": {"type": "integer", "minimum": 0},
  "stringList": {"type": ["array", "null"], "items": {"type": "string"}},
  "weight": {"type": ["number", "null"]},
  "candidate": {
    "type": "object",
    "properties": {
      "id": {"type": "string"},
      "title": {"type": "string"},
      "similarity": {"type": "number"},
      "system_rating": {"$ref": "#/definitions/nullableNumber"},
      "confidence_score": {"$ref": "#/definitions/nullableNumber"},
      "description": {"type": "string"},
      "ingredients": {"$ref": "#/definitions/stringList"},
      "instructions": {"$ref": "#/definitions/stringList"},
      "images": {"$ref": "#/definitions/stringList"},
      "nutrition_info": {"type": ["object", "null"]},
      "prep_time": {"$ref": "#/definitions/nullableCount"},
      "cook_time": {"$ref": "#/definitions/nullableCount"},
      "difficulty": {"type": "string"},
      "cuisine": {"type": "string"},
      "avg_user_rating": {"$ref": "#/definitions/nullableNumber"},
      "total_user_ratings": {"$ref": "#/definitions/count"},
      "favorite_count": {"$ref": "#/definitions/count"},
      "view_count": {"$ref": "#/definitions/count"},
      "tags": {"$ref": "#/definitions/stringList"},
      "attributes": {"type": ["object", "null"]}
    }
  },
  "candidates": {"type": "array", "items": {"$ref": "#/definitions/candidate"}},
  "weights": {
    "type": ["object", "null"],
    "properties": {
      "similarity": {"$ref": "#/definitions/weight"},
      "quality": {"$ref": "#/definitions/weight"},
      "engagement": {"$ref": "#/definitions/weight"},
      "recency": {"$ref": "#/definitions/weight"}
    },
    "additionalProperties": false
  },
  "preferences": {
    "type": ["object", "null"],
    "properties": {
      "favorite_cuisines": {"$ref": "#/definitions/stringList"},
      "preferred_difficulty": {"$ref": "#/definitions/stringList"},
      "dietary_restrictions": {"$ref": "#/definitions/stringList"}
    }
  },
  "mode": {"type": "string"},
  "halfLife": {"type": "number", "minimum": 0}
}`

// Query properties accepted by every ranking endpoint.
const queryProperties = `
    "mode": {"$ref": "#/definitions/mode"},
    "weights": {"$ref": "#/definitions/weights"},
    "user_preferences": {"$ref": "#/definitions/preferences"},
    "include_breakdown": {"type": "boolean"},
    "recency_half_life_days": {"$ref": "#/definitions/halfLife"},
    "compact": {"type": "boolean"},
    "now": {}`

var (
	rankSchema = mustSchema(`{
  "type": "object",
  "required": ["candidates"],
  "properties": {
    "candidates": {"$ref": "#/definitions/candidates"},` + queryProperties + `
  },
  "definitions": %s
}`)

	mergeSchema = mustSchema(`{
  "type": "object",
  "required": ["result_sets"],
  "properties": {
    "result_sets": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["candidates"],
        "properties": {
          "name": {"type": "string"},
          "weight": {"type": "number"},
          "candidates": {"$ref": "#/definitions/candidates"}
        }
      }
    },` + queryProperties + `
  },
  "definitions": %s
}`)

	hitsSchema = mustSchema(`{
  "type": "object",
  "required": ["hits"],
  "properties": {
    "hits": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "similarity": {"type": "number"}
        }
      }
    },` + queryProperties + `
  },
  "definitions": %s
}`)

	explainSchema = mustSchema(`{
  "type": "object",
  "required": ["candidates", "id"],
  "properties": {
    "id": {"type": "string"},
    "candidates": {"$ref": "#/definitions/candidates"},` + queryProperties + `
  },
  "definitions": %s
}`)

	trendingSchema = mustSchema(`{
  "type": "object",
  "required": ["candidates"],
  "properties": {
    "candidates": {"$ref": "#/definitions/candidates"},
    "limit": {"type": "integer", "minimum": 0},
    "now": {}
  },
  "definitions": %s
}`)
)

func mustSchema(doc string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(fmt.Sprintf(doc, schemaDefinitions)))
	if err != nil {
		panic(fmt.Sprintf("compile request schema: %v", err))
	}
	return s
}

// validate checks doc against schema and joins every violation into one error.
func validate(schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) error {
	result, err := schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
	}
	return errors.New(strings.Join(msgs, "; "))
}
