package graphql

import (
	"time"

	"github.com/graphql-go/graphql"
)

var DateTime = graphql.NewScalar(
	graphql.ScalarConfig{
		Name:        "DateTime",
		Description: "DateTime scalar type",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case time.Time:
				return v.Format(time.RFC3339)
			case *time.Time:
				return v.Format(time.RFC3339)
			default:
				return nil
			}
		},
	},
)

func (gh *gqlHandler) initSchema() error {
	authorType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Author",
			Fields: graphql.Fields{
				"id":        &graphql.Field{Type: graphql.ID},
				"username":  &graphql.Field{Type: graphql.String},
				"firstName": &graphql.Field{Type: graphql.String},
				"lastName":  &graphql.Field{Type: graphql.String},
			},
		},
	)

	categoryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Category",
			Fields: graphql.Fields{
				"id":          &graphql.Field{Type: graphql.ID},
				"title":       &graphql.Field{Type: graphql.String},
				"description": &graphql.Field{Type: graphql.String},
				"slug":        &graphql.Field{Type: graphql.String},
				"createdAt":   &graphql.Field{Type: DateTime},
			},
		},
	)

	locationType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Location",
			Fields: graphql.Fields{
				"id":   &graphql.Field{Type: graphql.ID},
				"name": &graphql.Field{Type: graphql.String},
			},
		},
	)

	postType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Post",
			Fields: graphql.Fields{
				"id":           &graphql.Field{Type: graphql.ID},
				"title":        &graphql.Field{Type: graphql.String},
				"text":         &graphql.Field{Type: graphql.String},
				"pubDate":      &graphql.Field{Type: DateTime},
				"imageUrl":     &graphql.Field{Type: graphql.String},
				"commentCount": &graphql.Field{Type: graphql.Int},
				"author":       &graphql.Field{Type: authorType},
				"category":     &graphql.Field{Type: categoryType},
				"location":     &graphql.Field{Type: locationType},
			},
		},
	)

	commentType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Comment",
			Fields: graphql.Fields{
				"id":        &graphql.Field{Type: graphql.ID},
				"postId":    &graphql.Field{Type: graphql.ID},
				"text":      &graphql.Field{Type: graphql.String},
				"createdAt": &graphql.Field{Type: DateTime},
				"author":    &graphql.Field{Type: authorType},
			},
		},
	)

	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"post":       getPostQuery(gh, postType),
				"posts":      getPostsQuery(gh, postType),
				"categories": getCategoriesQuery(gh, categoryType),
				"comments":   getCommentsQuery(gh, commentType),
			},
		},
	)

	schemaConfig := graphql.SchemaConfig{
		Query: queryType,
	}

	schema, err := graphql.NewSchema(schemaConfig)
	if err != nil {
		return err
	}
	gh.schema = schema

	return nil
}
