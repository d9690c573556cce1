package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/budgetreq/budgetreq-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec represents an OpenAPI 3.0 spec structure
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// rewriteRefs points $ref values at components/schemas instead of definitions
func rewriteRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = rewriteRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = rewriteRefs(item)
		}
		return result
	default:
		return data
	}
}

// convertOperation rewrites one Swagger 2.0 operation into OpenAPI 3.0 form.
// Body and formData parameters become a requestBody and response schemas move
// under content.
func convertOperation(op map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(op))
	for key, value := range op {
		switch key {
		case "parameters", "responses", "consumes", "produces":
		default:
			result[key] = value
		}
	}

	consumes := stringList(op["consumes"], "application/json")
	produces := stringList(op["produces"], "application/json")

	var params []interface{}
	formProps := map[string]interface{}{}
	var formRequired []interface{}
	raw, _ := op["parameters"].([]interface{})
	for _, p := range raw {
		param, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		switch param["in"] {
		case "body":
			body := map[string]interface{}{
				"content": map[string]interface{}{
					consumes[0]: map[string]interface{}{"schema": param["schema"]},
				},
			}
			if required, ok := param["required"]; ok {
				body["required"] = required
			}
			result["requestBody"] = body
		case "formData":
			prop := map[string]interface{}{"type": param["type"]}
			if param["type"] == "file" {
				prop = map[string]interface{}{"type": "string", "format": "binary"}
			}
			formProps[param["name"].(string)] = prop
			if req, _ := param["required"].(bool); req {
				formRequired = append(formRequired, param["name"])
			}
		default:
			params = append(params, convertParameter(param))
		}
	}
	if len(formProps) > 0 {
		schema := map[string]interface{}{"type": "object", "properties": formProps}
		if len(formRequired) > 0 {
			schema["required"] = formRequired
		}
		result["requestBody"] = map[string]interface{}{
			"content": map[string]interface{}{"multipart/form-data": map[string]interface{}{"schema": schema}},
		}
	}
	if len(params) > 0 {
		result["parameters"] = params
	}

	if responses, ok := op["responses"].(map[string]interface{}); ok {
		converted := make(map[string]interface{}, len(responses))
		for code, r := range responses {
			resp, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			out := map[string]interface{}{"description": resp["description"]}
			if schema, ok := resp["schema"]; ok {
				out["content"] = map[string]interface{}{produces[0]: map[string]interface{}{"schema": schema}}
			}
			converted[code] = out
		}
		result["responses"] = converted
	}
	return result
}

// convertParameter moves type fields of a path or query parameter into a schema
func convertParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}
	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = val
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

func stringList(v interface{}, fallback string) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = append(out, fallback)
	}
	return out
}

// buildOpenAPI3 converts a Swagger 2.0 document to OpenAPI 3.0
func buildOpenAPI3(doc []byte) (*OpenAPI3Spec, error) {
	var swagger2 map[string]interface{}
	if err := json.Unmarshal(doc, &swagger2); err != nil {
		return nil, err
	}

	info, _ := swagger2["info"].(map[string]interface{})
	basePath, _ := swagger2["basePath"].(string)

	paths := make(map[string]interface{})
	if rawPaths, ok := swagger2["paths"].(map[string]interface{}); ok {
		for path, item := range rawPaths {
			methods, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			converted := make(map[string]interface{}, len(methods))
			for method, op := range methods {
				if operation, ok := op.(map[string]interface{}); ok {
					converted[method] = convertOperation(operation)
				}
			}
			paths[path] = converted
		}
	}

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = definitions
	}

	return &OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    []Server{{URL: basePath, Description: "This server"}},
		Paths:      rewriteRefs(paths).(map[string]interface{}),
		Components: rewriteRefs(components).(map[string]interface{}),
	}, nil
}

// ServeOpenAPI3Spec serves the swagger spec converted to OpenAPI 3.0
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read swagger doc")
		return NewInternalError(c, "Failed to read swagger doc")
	}

	spec, err := buildOpenAPI3([]byte(doc))
	if err != nil {
		log.Error().Err(err).Msg("Failed to convert swagger doc")
		return NewInternalError(c, "Failed to convert swagger doc")
	}
	return c.JSON(http.StatusOK, spec)
}
