// Package farmrpc declares the spacefarm.FarmControl gRPC service.
//
// Messages are protobuf well-known types: requests and replies travel as
// google.protobuf.Struct, so no generated code is needed on either side.
package farmrpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

const (
	ServiceName = "spacefarm.FarmControl"

	ApplyActionMethod = "/" + ServiceName + "/ApplyAction"
	GetStatsMethod    = "/" + ServiceName + "/GetStats"
)

// FarmControlServer is implemented by the farm service.
type FarmControlServer interface {
	// ApplyAction expects {"action": string, "plant_id"?: number, "action_id"?: string}.
	ApplyAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetStats(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

func applyActionHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FarmControlServer).ApplyAction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ApplyActionMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FarmControlServer).ApplyAction(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getStatsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FarmControlServer).GetStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetStatsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FarmControlServer).GetStats(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var FarmControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FarmControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ApplyAction", Handler: applyActionHandler},
		{MethodName: "GetStats", Handler: getStatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "spacefarm/farm_control",
}

func RegisterFarmControlServer(s grpc.ServiceRegistrar, srv FarmControlServer) {
	s.RegisterService(&FarmControlServiceDesc, srv)
}

// ActionRequest is the decoded ApplyAction request.
type ActionRequest struct {
	ActionID string `json:"action_id,omitempty"`
	Action   string `json:"action"`
	PlantID  *int   `json:"plant_id,omitempty"`
}

// ActionReply is the decoded ApplyAction reply.
type ActionReply struct {
	ActionID string             `json:"action_id"`
	Action   string             `json:"action"`
	Status   string             `json:"status"`
	Affected int                `json:"affected"`
	Message  string             `json:"message"`
	Stats    entities.GridStats `json:"stats"`
}

// ToStruct converts any JSON-encodable value to a Struct.
func ToStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("farmrpc: %T is not a JSON object: %w", v, err)
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes a Struct into out through its JSON form.
func FromStruct(s *structpb.Struct, out interface{}) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// Client calls FarmControl over any client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ApplyAction(ctx context.Context, req ActionRequest, opts ...grpc.CallOption) (ActionReply, error) {
	var reply ActionReply
	in, err := ToStruct(req)
	if err != nil {
		return reply, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ApplyActionMethod, in, out, opts...); err != nil {
		return reply, err
	}
	err = FromStruct(out, &reply)
	return reply, err
}

func (c *Client) GetStats(ctx context.Context, opts ...grpc.CallOption) (entities.GridStats, error) {
	var stats entities.GridStats
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetStatsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return stats, err
	}
	err := FromStruct(out, &stats)
	return stats, err
}
