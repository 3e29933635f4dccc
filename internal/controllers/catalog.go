package controllers

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"lead-system/internal/lifecycle"
	"lead-system/pkg/utils"
)

// CatalogController exposes the state catalog so clients can render forms
// without hardcoding the field schemas.
type CatalogController struct{}

func NewCatalogController() *CatalogController {
	return &CatalogController{}
}

type catalogFieldDTO struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Products []string `json:"products,omitempty"`
}

type catalogStateDTO struct {
	State           string            `json:"state"`
	RequiresPayload bool              `json:"requires_payload"`
	SubStates       []string          `json:"sub_states,omitempty"`
	Fields          []catalogFieldDTO `json:"fields"`
}

func fieldKindName(kind lifecycle.FieldKind) string {
	switch kind {
	case lifecycle.FieldNumber:
		return "number"
	case lifecycle.FieldDateTime:
		return "datetime"
	default:
		return "text"
	}
}

func (c *CatalogController) GetCatalog(ctx echo.Context) error {
	states := lifecycle.States()
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })

	out := make([]catalogStateDTO, 0, len(states))
	for _, state := range states {
		spec, _ := lifecycle.Spec(state)

		subStates := make([]string, 0, len(spec.AllowedSubStates))
		for _, s := range spec.AllowedSubStates {
			subStates = append(subStates, string(s))
		}

		fields := make([]catalogFieldDTO, 0, len(spec.Fields))
		for _, f := range spec.Fields {
			products := make([]string, 0, len(f.Products))
			for _, p := range f.Products {
				products = append(products, string(p))
			}
			fields = append(fields, catalogFieldDTO{
				Name:     f.Name,
				Kind:     fieldKindName(f.Kind),
				Required: f.Required,
				Products: products,
			})
		}

		out = append(out, catalogStateDTO{
			State:           string(state),
			RequiresPayload: spec.RequiresPayload,
			SubStates:       subStates,
			Fields:          fields,
		})
	}
	return utils.SuccessResponse(ctx, out, "state catalog", http.StatusOK)
}
