package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"pokedex/pkg/models"
)

// Client calls pokedex.Catalog over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *Client) ListPokemon(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*models.ListResult, error) {
	out := new(models.ListResult)
	if err := c.invoke(ctx, "ListPokemon", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPokemon(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*models.PokemonDetail, error) {
	out := new(models.PokemonDetail)
	if err := c.invoke(ctx, "GetPokemon", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTypes(ctx context.Context, opts ...grpc.CallOption) (*TypesResponse, error) {
	out := new(TypesResponse)
	if err := c.invoke(ctx, "ListTypes", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
