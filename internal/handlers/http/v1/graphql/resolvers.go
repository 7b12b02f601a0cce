package graphql

import (
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/gfdmit/blogicum/internal/policy"
)

func getPostQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := strconv.Atoi(p.Args["id"].(string))
			if err != nil {
				return nil, err
			}
			post, _, err := gh.svc.Detail(p.Context, id, policy.AnonymousID)
			if err != nil {
				return nil, err
			}
			return post, nil
		},
	}
}

func getPostsQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(postType),
		Args: graphql.FieldConfigArgument{
			"categorySlug": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
			"limit":        &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
			"offset":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.PublicPosts(
				p.Context,
				p.Args["categorySlug"].(string),
				p.Args["limit"].(int),
				p.Args["offset"].(int),
			)
		},
	}
}

func getCategoriesQuery(gh *gqlHandler, categoryType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(categoryType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.Categories(p.Context)
		},
	}
}

func getCommentsQuery(gh *gqlHandler, commentType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(commentType),
		Args: graphql.FieldConfigArgument{
			"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 500},
			"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			postID, err := strconv.Atoi(p.Args["postId"].(string))
			if err != nil {
				return nil, err
			}
			_, comments, err := gh.svc.Detail(p.Context, postID, policy.AnonymousID)
			if err != nil {
				return nil, err
			}
			offset := p.Args["offset"].(int)
			limit := p.Args["limit"].(int)
			if offset >= len(comments) {
				return nil, nil
			}
			comments = comments[offset:]
			if len(comments) > limit {
				comments = comments[:limit]
			}
			return comments, nil
		},
	}
}
