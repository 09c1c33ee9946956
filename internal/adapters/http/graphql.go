package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/bboxmap/internal/core/domain"
	"github.com/samirrijal/bboxmap/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to the form controller.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	validationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Validation",
		Fields: graphql.Fields{
			"result":    &graphql.Field{Type: graphql.String},
			"valid":     &graphql.Field{Type: graphql.Boolean},
			"area":      &graphql.Field{Type: graphql.Float},
			"areaLimit": &graphql.Field{Type: graphql.Float},
			"bbox":      &graphql.Field{Type: graphql.String},
		},
	})

	elementsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Elements",
		Fields: graphql.Fields{
			"featureCount": &graphql.Field{Type: graphql.Int},
			"center":       &graphql.Field{Type: graphql.NewList(graphql.Float)},
			"geojson":      &graphql.Field{Type: graphql.String, Description: "FeatureCollection as a JSON string, null when nothing was renderable"},
		},
	})

	boxArgs := graphql.FieldConfigArgument{
		"minLong": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"minLat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"maxLong": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"maxLat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"validate": &graphql.Field{
				Type:        validationType,
				Description: "Classify a bounding box without fetching it",
				Args:        boxArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					box, err := boxFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					result := deps.Form.Validate(box)
					return map[string]interface{}{
						"result":    result.String(),
						"valid":     result == domain.Valid,
						"area":      box.Area(),
						"areaLimit": deps.Form.AreaLimit(),
						"bbox":      box.QueryValue(),
					}, nil
				},
			},
			"elements": &graphql.Field{
				Type:        elementsType,
				Description: "Fetch the map elements inside a bounding box",
				Args:        boxArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					box, err := boxFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					fc, err := deps.Form.Elements(p.Context, box)
					if err != nil {
						return nil, err
					}
					out := map[string]interface{}{"featureCount": 0}
					view := usecases.RenderMap(fc, &box)
					out["center"] = []float64{view.Center[0], view.Center[1]}
					if fc != nil {
						body, err := fc.MarshalJSON()
						if err != nil {
							return nil, err
						}
						out["featureCount"] = len(fc.Features)
						out["geojson"] = string(body)
					}
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// boxFromArgs range checks the arguments like form fields.
func boxFromArgs(args map[string]interface{}) (domain.BoundingBox, error) {
	values := make(map[string]string, 4)
	for _, in := range domain.CoordinateInputs {
		v, ok := args[in.Name].(float64)
		if !ok {
			return domain.BoundingBox{}, errors.New(in.Name + " is required")
		}
		f := v
		values[in.Name] = formatOptional(&f)
	}
	box, ferrs := domain.ParseForm(values)
	if len(ferrs) > 0 {
		return domain.BoundingBox{}, ferrs
	}
	return box, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
