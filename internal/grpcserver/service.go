package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"pokedex/pkg/models"
)

const ServiceName = "pokedex.Catalog"

type ListRequest struct {
	Page   int32    `json:"page,omitempty"`
	Limit  int32    `json:"limit,omitempty"`
	Search string   `json:"search,omitempty"`
	Types  []string `json:"types,omitempty"`
	Sort   string   `json:"sort,omitempty"`
}

type GetRequest struct {
	ID int32 `json:"id"`
}

type Empty struct{}

type TypesResponse struct {
	Types []models.TypeInfo `json:"types"`
}

// CatalogServer is the server side of pokedex.Catalog.
type CatalogServer interface {
	ListPokemon(context.Context, *ListRequest) (*models.ListResult, error)
	GetPokemon(context.Context, *GetRequest) (*models.PokemonDetail, error)
	ListTypes(context.Context, *Empty) (*TypesResponse, error)
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(CatalogServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(CatalogServer), ctx, req.(*Req))
			})
		},
	}
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ListPokemon", CatalogServer.ListPokemon),
		unaryHandler("GetPokemon", CatalogServer.GetPokemon),
		unaryHandler("ListTypes", CatalogServer.ListTypes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pokedex/catalog",
}
