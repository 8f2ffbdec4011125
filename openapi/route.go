package openapi

import (
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

type RouteBuilder struct {
	openapi   *OpenAPI
	method    string
	path      string
	operation *openapi3.Operation
}

func (o *OpenAPI) Document(method, path string) *RouteBuilder {
	return &RouteBuilder{
		openapi:   o,
		method:    method,
		path:      path,
		operation: &openapi3.Operation{Responses: openapi3.NewResponses()},
	}
}

func (rb *RouteBuilder) Summary(summary string) *RouteBuilder {
	rb.operation.Summary = summary
	return rb
}

func (rb *RouteBuilder) Tags(tags ...string) *RouteBuilder {
	rb.operation.Tags = append(rb.operation.Tags, tags...)
	return rb
}

func ref(schemaName string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + schemaName}
}

func (rb *RouteBuilder) RequestBody(schemaName string) *RouteBuilder {
	rb.operation.RequestBody = &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{Schema: ref(schemaName)},
			},
		},
	}
	return rb
}

// Response documents a JSON response. An empty schemaName documents a
// response without a body.
func (rb *RouteBuilder) Response(statusCode int, schemaName, description string) *RouteBuilder {
	if description == "" {
		description = http.StatusText(statusCode)
	}

	response := &openapi3.Response{Description: &description}
	if schemaName != "" {
		response.Content = openapi3.Content{
			"application/json": &openapi3.MediaType{Schema: ref(schemaName)},
		}
	}

	rb.operation.Responses.Set(strconv.Itoa(statusCode), &openapi3.ResponseRef{Value: response})
	return rb
}

// ResponseHeader documents a header on an already documented response.
func (rb *RouteBuilder) ResponseHeader(statusCode int, name, description string) *RouteBuilder {
	resp := rb.operation.Responses.Value(strconv.Itoa(statusCode))
	if resp == nil || resp.Value == nil {
		return rb
	}
	if resp.Value.Headers == nil {
		resp.Value.Headers = make(openapi3.Headers)
	}
	resp.Value.Headers[name] = &openapi3.HeaderRef{
		Value: &openapi3.Header{
			Parameter: openapi3.Parameter{
				Description: description,
				Schema:      &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
			},
		},
	}
	return rb
}

func (rb *RouteBuilder) Security(schemes ...string) *RouteBuilder {
	if rb.operation.Security == nil {
		rb.operation.Security = &openapi3.SecurityRequirements{}
	}
	for _, scheme := range schemes {
		*rb.operation.Security = append(*rb.operation.Security, openapi3.SecurityRequirement{scheme: []string{}})
	}
	return rb
}

func (rb *RouteBuilder) Build() {
	rb.openapi.addOperation(rb.method, rb.path, rb.operation)
}
