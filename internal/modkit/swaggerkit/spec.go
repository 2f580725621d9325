// Package swaggerkit serves Swagger UI and the OpenAPI document for the API
package swaggerkit

import (
	"encoding/json"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"stealthbridge/internal/platform/config"

	"github.com/swaggo/swag/v2"
)

// instance is the swag registry name of the skeleton document
const instance = "stealthbridge"

// skeleton is served until a build tagged swag links the generated document
type skeleton struct{}

func (skeleton) ReadDoc() string {
	return `{"openapi":"3.0.3","info":{"title":"Stealthbridge API","version":"0.0.0"},"paths":{}}`
}

func init() { swag.Register(instance, skeleton{}) }

// docReader returns the raw document; an empty string is served as a parse error
var docReader = func() string {
	doc, err := swag.ReadDoc(instance)
	if err != nil {
		return ""
	}
	return doc
}

// serveDocJSON serves the document patched for the runtime envelope
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		patchSpec(spec, "/api/v1", config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// defaultResponses are added to every operation that does not document them
var defaultResponses = map[int]map[string]any{
	http.StatusBadRequest: {
		"status_code": 400, "status": "Bad Request", "code": 8,
		"error": "since must be a valid datetime", "field": "since",
	},
	http.StatusUnauthorized: {
		"status_code": 401, "status": "Unauthorized", "code": 5,
		"error": "unknown api key",
	},
	http.StatusInternalServerError: {
		"status_code": 500, "status": "Internal Server Error", "code": 1,
		"error": "panic recovered",
	},
}

// patchSpec pins the document to OpenAPI 3.0.3 (the UI cannot render 3.1),
// points servers at base, defines ErrorResponse and fills default responses
func patchSpec(spec map[string]any, base, titleSuffix string) {
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); v == "" || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": base}}
	}
	if info, ok := spec["info"].(map[string]any); ok && titleSuffix != "" {
		if title, ok := info["title"].(string); ok {
			info["title"] = title + " " + titleSuffix
		}
	}

	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		props := map[string]any{}
		for _, f := range []string{"status", "error", "field", "kind", "request_id"} {
			props[f] = map[string]any{"type": "string"}
		}
		for _, f := range []string{"status_code", "code"} {
			props[f] = map[string]any{"type": "integer", "format": "int32"}
		}
		props["details"] = map[string]any{"type": "object"}
		schemas["ErrorResponse"] = map[string]any{
			"type":        "object",
			"description": "Error envelope",
			"properties":  props,
			"required":    []any{"status_code", "status"},
		}
	}

	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		ops, _ := p.(map[string]any)
		for _, o := range ops {
			op, ok := o.(map[string]any)
			if !ok {
				continue
			}
			responses := child(op, "responses")
			for status, example := range defaultResponses {
				key := strconv.Itoa(status)
				if _, exists := responses[key]; exists {
					continue
				}
				responses[key] = map[string]any{
					"description": http.StatusText(status),
					"content": map[string]any{"application/json": map[string]any{
						"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
						"example": maps.Clone(example),
					}},
				}
			}
		}
	}
}

// child returns m[key] as a map, creating it when missing
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}
