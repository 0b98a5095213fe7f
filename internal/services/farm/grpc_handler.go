package farm

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/LeonardoBeccarini/spacefarm/internal/model"
	"github.com/LeonardoBeccarini/spacefarm/internal/rpc/farmrpc"
	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
)

// GrpcHandler implements farmrpc.FarmControlServer.
type GrpcHandler struct {
	svc *FarmService
}

func NewGrpcHandler(svc *FarmService) *GrpcHandler {
	return &GrpcHandler{svc: svc}
}

func grpcStatus(err error) error {
	switch {
	case errors.Is(err, simulation.ErrUnknownAction):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrPlantNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrNoPlantSelected):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (h *GrpcHandler) ApplyAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in farmrpc.ActionRequest
	if err := farmrpc.FromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	action, err := simulation.ParseAction(in.Action)
	if err != nil {
		return nil, grpcStatus(err)
	}
	res, err := h.svc.Apply(ctx, action, in.PlantID, in.ActionID)
	if err != nil {
		return nil, grpcStatus(err)
	}
	return farmrpc.ToStruct(farmrpc.ActionReply{
		ActionID: res.ActionID,
		Action:   string(res.Action),
		Status:   model.StatusOK,
		Affected: res.Affected,
		Message:  res.Message,
		Stats:    res.Stats,
	})
}

func (h *GrpcHandler) GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return farmrpc.ToStruct(h.svc.Stats())
}
