package openapi

import (
	"maps"
	"net/http"
)

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("ErrorResponse")},
		},
	}
}

// NewComponents creates Components with the shared error body, page
// request, and the error responses every handler may produce.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"ErrorResponse": {
				Type:     "object",
				Required: []string{"success", "error"},
				Properties: map[string]*Schema{
					"success": {Type: "boolean", Example: false},
					"kind":    {Type: "string", Description: "Machine-readable error category", Example: "invalid_input"},
					"error":   {Type: "string", Description: "Normalized error message"},
				},
			},
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":      errorResponse("Invalid request"),
			"NotFound":        errorResponse("Resource not found"),
			"TooManyRequests": errorResponse("Rate limit exceeded"),
			"InternalError":   errorResponse("Internal failure"),
			"NotImplemented":  errorResponse("Capability not configured"),
			"BadGateway":      errorResponse("Upstream service failed"),
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}

var statusResponses = map[int]string{
	http.StatusBadRequest:          "BadRequest",
	http.StatusNotFound:            "NotFound",
	http.StatusTooManyRequests:     "TooManyRequests",
	http.StatusInternalServerError: "InternalError",
	http.StatusNotImplemented:      "NotImplemented",
	http.StatusBadGateway:          "BadGateway",
}

// Responses builds an operation's response map from its success response
// and the error statuses it may return.
func Responses(ok *Response, errorStatuses ...int) map[int]*Response {
	out := map[int]*Response{http.StatusOK: ok}
	for _, status := range errorStatuses {
		if name, known := statusResponses[status]; known {
			out[status] = ResponseRef(name)
		}
	}
	return out
}
