package grpcserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pokedex/internal/catalog"
	"pokedex/internal/query"
	"pokedex/pkg/models"
)

type Server struct {
	Catalog *catalog.Service
	Logger  *zap.Logger
}

func NewServer(svc *catalog.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Catalog: svc, Logger: logger}
}

func (s *Server) ListPokemon(ctx context.Context, req *ListRequest) (*models.ListResult, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	q := query.New(int(req.Page), int(req.Limit), req.Search, req.Types, req.Sort)

	res, err := s.Catalog.List(ctx, q)
	if err != nil {
		s.Logger.Error("grpc list pokemon failed", zap.Int("page", q.Page), zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to fetch pokemon")
	}
	return &res, nil
}

func (s *Server) GetPokemon(ctx context.Context, req *GetRequest) (*models.PokemonDetail, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}

	// Detail rejects ids below 1 with query.ErrInvalidID before any fetch.
	d, err := s.Catalog.Detail(ctx, int(req.ID))
	switch {
	case err == nil:
		return &d, nil
	case errors.Is(err, query.ErrInvalidID):
		return nil, status.Error(codes.InvalidArgument, "invalid pokemon id")
	case errors.Is(err, catalog.ErrNotFound):
		return nil, status.Error(codes.NotFound, "pokemon not found")
	default:
		s.Logger.Error("grpc get pokemon failed", zap.Int32("id", req.ID), zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to fetch pokemon details")
	}
}

func (s *Server) ListTypes(ctx context.Context, _ *Empty) (*TypesResponse, error) {
	return &TypesResponse{Types: catalog.Types()}, nil
}

// UnaryLogger logs one line per call with its status code.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)))
		return resp, err
	}
}

// New builds a grpc.Server with the catalog service and call logging.
func New(svc *catalog.Service, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	srv := NewServer(svc, logger)
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryLogger(srv.Logger))}, opts...)
	gs := grpc.NewServer(opts...)
	RegisterCatalogServer(gs, srv)
	return gs
}
