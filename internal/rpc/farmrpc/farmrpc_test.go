package farmrpc

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

type stubServer struct {
	stats entities.GridStats
	last  ActionRequest
}

func (s *stubServer) ApplyAction(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := FromStruct(req, &s.last); err != nil {
		return nil, err
	}
	if s.last.Action == "bogus" {
		return nil, status.Error(codes.InvalidArgument, "unknown action")
	}
	return ToStruct(ActionReply{ActionID: s.last.ActionID, Action: s.last.Action, Status: "OK", Affected: 4, Stats: s.stats})
}

func (s *stubServer) GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return ToStruct(s.stats)
}

func dial(t *testing.T, srv FarmControlServer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterFarmControlServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestRoundTrip(t *testing.T) {
	stats := entities.GridStats{TotalPlants: 48, HealthyPlants: 20, CriticalPlants: 5, AverageWaterLevel: 51.5, EstimatedHarvest: 1200.25, DaysToNextHarvest: 6, WaterEfficiency: 40}
	srv := &stubServer{stats: stats}
	c := dial(t, srv)

	got, err := c.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if got != stats {
		t.Errorf("GetStats = %+v, want %+v", got, stats)
	}

	id := 12
	reply, err := c.ApplyAction(context.Background(), ActionRequest{ActionID: "a-1", Action: "manual", PlantID: &id})
	if err != nil {
		t.Fatalf("ApplyAction: %v", err)
	}
	if reply.Affected != 4 || reply.Status != "OK" || reply.ActionID != "a-1" || reply.Stats != stats {
		t.Errorf("reply = %+v", reply)
	}
	if srv.last.PlantID == nil || *srv.last.PlantID != 12 {
		t.Errorf("server saw plant id %v", srv.last.PlantID)
	}
}

func TestErrorStatusPropagates(t *testing.T) {
	c := dial(t, &stubServer{})
	_, err := c.ApplyAction(context.Background(), ActionRequest{Action: "bogus"})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", status.Code(err))
	}
}
