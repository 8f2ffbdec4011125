package openapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

type OpenAPI struct {
	spec *openapi3.T
	mu   sync.RWMutex
}

func New(title, version string) *OpenAPI {
	return &OpenAPI{
		spec: &openapi3.T{
			OpenAPI: "3.0.3",
			Info: &openapi3.Info{
				Title:   title,
				Version: version,
			},
			Paths: openapi3.NewPaths(),
			Components: &openapi3.Components{
				Schemas:         make(openapi3.Schemas),
				SecuritySchemes: make(openapi3.SecuritySchemes),
			},
		},
	}
}

func (o *OpenAPI) Description(desc string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Info.Description = desc
	return o
}

func (o *OpenAPI) Tag(name, description string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Tags = append(o.spec.Tags, &openapi3.Tag{
		Name:        name,
		Description: description,
	})
	return o
}

func (o *OpenAPI) BearerAuth(name, description string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  description,
		},
	}
	return o
}

func (o *OpenAPI) CookieAuth(name, cookieName, description string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:        "apiKey",
			Name:        cookieName,
			In:          "cookie",
			Description: description,
		},
	}
	return o
}

// Schema registers an object schema under components. Every property is a
// string unless its format is given as "name:format", e.g. "expiresAt:date-time".
func (o *OpenAPI) Schema(name string, required []string, properties ...string) *OpenAPI {
	schema := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: make(openapi3.Schemas, len(properties)),
		Required:   required,
	}

	for _, property := range properties {
		propName, format, _ := strings.Cut(property, ":")
		switch format {
		case "array":
			schema.Properties[propName] = &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
			}}
		default:
			schema.Properties[propName] = &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type:   &openapi3.Types{"string"},
				Format: format,
			}}
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Components.Schemas[name] = &openapi3.SchemaRef{Value: schema}
	return o
}

func (o *OpenAPI) Spec() *openapi3.T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.spec
}

func (o *OpenAPI) JSON() ([]byte, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return json.MarshalIndent(o.spec, "", "  ")
}

func (o *OpenAPI) YAML() ([]byte, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	intermediate, err := o.spec.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(intermediate)
}

func (o *OpenAPI) JSONHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := o.JSON()
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, data)
	}
}

func (o *OpenAPI) YAMLHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := o.YAML()
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "application/yaml", data)
	}
}

func (o *OpenAPI) addOperation(method, path string, op *openapi3.Operation) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pathItem := o.spec.Paths.Find(path)
	if pathItem == nil {
		pathItem = &openapi3.PathItem{}
		o.spec.Paths.Set(path, pathItem)
	}
	pathItem.SetOperation(strings.ToUpper(method), op)
}
