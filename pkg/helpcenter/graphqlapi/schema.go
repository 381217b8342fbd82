// Package graphqlapi is the public read surface plus the feedback
// mutation. It is unauthenticated; the rate limiter and the schema itself
// are the only gatekeepers.
package graphqlapi

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/tendant/help-center/pkg/helpcenter"
)

// jsonScalar carries block payloads through without imposing a shape on
// them; the editor validates structure at write time.
var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value",
	Serialize:   func(value interface{}) interface{} { return value },
	ParseValue:  func(value interface{}) interface{} { return value },
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return valueAST.GetValue()
	},
})

// NewSchema builds the public schema over the shared service
func NewSchema(svc helpcenter.Service) (graphql.Schema, error) {
	blockType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Block",
		Fields: graphql.Fields{
			"type": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(p.Source.(helpcenter.Block).Type), nil
				},
			},
			"data": &graphql.Field{
				Type: jsonScalar,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw := p.Source.(helpcenter.Block).Data
					if len(raw) == 0 {
						return nil, nil
					}
					var data interface{}
					if err := json.Unmarshal(raw, &data); err != nil {
						return nil, err
					}
					return data, nil
				},
			},
		},
	})

	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Category).ID.String(), nil
				},
			},
			"slug": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Category).Slug, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Category).Name, nil
				},
			},
			"position": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Category).Position, nil
				},
			},
		},
	})

	mediaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Media",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Media).ID.String(), nil
				},
			},
			"url": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Media).URL, nil
				},
			},
			"fileName": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Media).FileName, nil
				},
			},
			"contentType": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Media).ContentType, nil
				},
			},
			"sizeBytes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(p.Source.(*helpcenter.Media).SizeBytes), nil
				},
			},
		},
	})

	guideType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Guide",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sourceGuide(p).ID.String(), nil
				},
			},
			"slug": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sourceGuide(p).Slug, nil
				},
			},
			"title": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sourceGuide(p).Title, nil
				},
			},
			"blocks": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(blockType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sourceGuide(p).Body.Blocks, nil
				},
			},
			"estimatedReadTime": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sourceGuide(p).EstimatedReadTime, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sourceGuide(p).CreatedAt.Format(time.RFC3339), nil
				},
			},
			"updatedAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sourceGuide(p).UpdatedAt.Format(time.RFC3339), nil
				},
			},
		},
	})

	// category and media need a lookup when the source is a bare list
	// entry; single-guide reads already carry them.
	guideType.AddFieldConfig("category", &graphql.Field{
		Type: categoryType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if details, ok := p.Source.(*helpcenter.GuideDetails); ok {
				if details.Category == nil {
					return nil, nil
				}
				return details.Category, nil
			}
			guide := sourceGuide(p)
			if guide.CategoryID == nil {
				return nil, nil
			}
			category, err := svc.GetCategory(p.Context, *guide.CategoryID)
			if err != nil {
				// A dangling reference renders as null; anything else
				// (e.g. the store being down) must surface.
				if errors.Is(err, helpcenter.ErrCategoryNotFound) {
					return nil, nil
				}
				return nil, err
			}
			return category, nil
		},
	})
	guideType.AddFieldConfig("media", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(mediaType))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if details, ok := p.Source.(*helpcenter.GuideDetails); ok {
				return details.Media, nil
			}
			return svc.ListMedia(p.Context, sourceGuide(p).ID)
		},
	})

	feedbackType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feedback",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Feedback).ID.String(), nil
				},
			},
			"guideId": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Source.(*helpcenter.Feedback).GuideID
					if id == nil {
						return nil, nil
					}
					return id.String(), nil
				},
			},
			"body": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*helpcenter.Feedback).Body, nil
				},
			},
			"rating": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rating := p.Source.(*helpcenter.Feedback).Rating
					if rating == nil {
						return nil, nil
					}
					return *rating, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"categories": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(categoryType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.ListCategories(p.Context)
				},
			},
			"category": &graphql.Field{
				Type: categoryType,
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.GetCategoryBySlug(p.Context, p.Args["slug"].(string))
				},
			},
			"guides": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(guideType))),
				Args: graphql.FieldConfigArgument{
					"categorySlug": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var categorySlug *string
					if slug, ok := p.Args["categorySlug"].(string); ok && slug != "" {
						categorySlug = &slug
					}
					return svc.ListGuides(p.Context, categorySlug)
				},
			},
			"guide": &graphql.Field{
				Type: guideType,
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.GetGuideBySlug(p.Context, p.Args["slug"].(string))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"submitFeedback": &graphql.Field{
				Type: graphql.NewNonNull(feedbackType),
				Args: graphql.FieldConfigArgument{
					"guideSlug": &graphql.ArgumentConfig{Type: graphql.String},
					"email":     &graphql.ArgumentConfig{Type: graphql.String},
					"body":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"rating":    &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req := helpcenter.SubmitFeedbackRequest{
						Body: p.Args["body"].(string),
					}
					if slug, ok := p.Args["guideSlug"].(string); ok {
						req.GuideSlug = slug
					}
					if email, ok := p.Args["email"].(string); ok {
						req.Email = email
					}
					if rating, ok := p.Args["rating"].(int); ok {
						req.Rating = &rating
					}
					return svc.SubmitFeedback(p.Context, req)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// sourceGuide accepts both list entries (*Guide) and single-guide reads
// (*GuideDetails) as field sources.
func sourceGuide(p graphql.ResolveParams) *helpcenter.Guide {
	switch src := p.Source.(type) {
	case *helpcenter.GuideDetails:
		return src.Guide
	case *helpcenter.Guide:
		return src
	default:
		return &helpcenter.Guide{ID: uuid.Nil}
	}
}
