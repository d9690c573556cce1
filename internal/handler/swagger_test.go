package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/budgetreq/budgetreq-backend/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestBuildOpenAPI3(t *testing.T) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	spec, err := buildOpenAPI3([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "3.0.3", spec.OpenAPI)
	require.Len(t, spec.Servers, 1)
	assert.Equal(t, "/api/v1", spec.Servers[0].URL)
	assert.Contains(t, spec.Components, "schemas")
	assert.Contains(t, spec.Components, "securitySchemes")

	raw, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "#/definitions/")

	submit := spec.Paths["/requisitions"].(map[string]interface{})["post"].(map[string]interface{})
	assert.Contains(t, submit, "requestBody")
	assert.NotContains(t, submit, "parameters", "the body parameter moves into requestBody")

	upload := spec.Paths["/requisitions/{id}/attachments"].(map[string]interface{})["post"].(map[string]interface{})
	content := upload["requestBody"].(map[string]interface{})["content"].(map[string]interface{})
	assert.Contains(t, content, "multipart/form-data")
	params := upload["parameters"].([]interface{})
	require.Len(t, params, 1)
	assert.Equal(t, map[string]interface{}{"type": "integer"}, params[0].(map[string]interface{})["schema"])
}

func TestBuildOpenAPI3InvalidJSON(t *testing.T) {
	_, err := buildOpenAPI3([]byte("{"))
	assert.Error(t, err)
}

func TestServeOpenAPI3Spec(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/swagger/openapi3.json", "")
	require.NoError(t, ServeOpenAPI3Spec(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"openapi":"3.0.3"`)
}
