package http

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/usecases"
	"github.com/samirrijal/reproj/internal/reproject"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	systemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "System",
		Fields: graphql.Fields{
			"code": &graphql.Field{Type: graphql.String},
			"epsg": &graphql.Field{Type: graphql.Int},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	systemsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Systems",
		Fields: graphql.Fields{
			"sources":      &graphql.Field{Type: graphql.NewList(systemType)},
			"destinations": &graphql.Field{Type: graphql.NewList(systemType)},
		},
	})

	transformResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TransformResult",
		Fields: graphql.Fields{
			"payload":  &graphql.Field{Type: graphql.String, Description: "Transformed payload as JSON text"},
			"pairs":    &graphql.Field{Type: graphql.Int},
			"strategy": &graphql.Field{Type: graphql.String},
		},
	})

	jobType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Job",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"zone":   &graphql.Field{Type: graphql.String},
			"dest":   &graphql.Field{Type: graphql.String},
			"status": &graphql.Field{Type: graphql.String},
			"pairs":  &graphql.Field{Type: graphql.Int},
			"error":  &graphql.Field{Type: graphql.String},
			"result": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					job, _ := p.Source.(*domain.Job)
					if job == nil || job.Output == nil {
						return nil, nil
					}
					return string(job.Output), nil
				},
			},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Stats",
		Fields: graphql.Fields{
			"requests": &graphql.Field{Type: graphql.Int},
			"pairs":    &graphql.Field{Type: graphql.Int},
			"failures": &graphql.Field{Type: graphql.Int},
		},
	})

	systemArgs := graphql.FieldConfigArgument{
		"zone": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"dest": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: legacyDest},
	}
	withArgs := func(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
		args := graphql.FieldConfigArgument{}
		for k, v := range systemArgs {
			args[k] = v
		}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"systems": &graphql.Field{
				Type:        systemsType,
				Description: "Registered source zones and destination systems",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Transforms.Systems(), nil
				},
			},
			"transformPoint": &graphql.Field{
				Type:        graphql.NewList(graphql.Float),
				Description: "Convert a single easting/northing pair",
				Args: withArgs(graphql.FieldConfigArgument{
					"x": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"y": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					x := strconv.FormatFloat(p.Args["x"].(float64), 'g', -1, 64)
					y := strconv.FormatFloat(p.Args["y"].(float64), 'g', -1, 64)
					ctx := usecases.WithOrigin(p.Context, domain.OriginGraphQL)
					pt, err := deps.Transforms.TransformPoint(ctx, p.Args["zone"].(string), p.Args["dest"].(string), x, y)
					if err != nil {
						return nil, err
					}
					return []float64{pt[0], pt[1]}, nil
				},
			},
			"transform": &graphql.Field{
				Type:        transformResultType,
				Description: "Convert every pair inside a JSON payload (array or GeoJSON) given as text",
				Args: withArgs(graphql.FieldConfigArgument{
					"payload": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, err := reproject.Decode([]byte(p.Args["payload"].(string)))
					if err != nil {
						return nil, err
					}
					ctx := usecases.WithOrigin(p.Context, domain.OriginGraphQL)
					out, stats, err := deps.Transforms.TransformPayload(ctx, p.Args["zone"].(string), p.Args["dest"].(string), raw)
					if err != nil {
						return nil, err
					}
					data, err := reproject.Encode(out)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"payload":  string(data),
						"pairs":    stats.Pairs,
						"strategy": string(stats.Strategy),
					}, nil
				},
			},
			"job": &graphql.Field{
				Type:        jobType,
				Description: "Get an asynchronous job by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Jobs == nil {
						return nil, domain.ErrUnavailable
					}
					return deps.Jobs.Get(p.Context, p.Args["id"].(string))
				},
			},
			"stats": &graphql.Field{
				Type:        statsType,
				Description: "Audit totals",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Audit == nil {
						return nil, domain.ErrUnavailable
					}
					return deps.Audit.Stats(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
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
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, fmt.Sprintf("invalid request body: %v", err))
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
