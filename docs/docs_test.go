package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegisteredDocDescribesAPI(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		BasePath    string                                `json:"basePath"`
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "/api/v1", doc.BasePath)
	for path, method := range map[string]string{
		"/auth/register":                "post",
		"/friends/requests/{id}":        "post",
		"/friends/requests/{id}/accept": "post",
		"/friends/{userID}":             "delete",
		"/chat/{userID}/messages":       "get",
		"/messages/{userID}":            "get",
		"/checkout":                     "post",
		"/payment/success":              "get",
	} {
		if assert.Contains(t, doc.Paths, path) {
			assert.Contains(t, doc.Paths[path], method, path)
		}
	}
	assert.Contains(t, doc.Definitions, "handler.ChatMessageResponse")
	assert.Contains(t, doc.Definitions, "handler.ErrorResponse")
}
