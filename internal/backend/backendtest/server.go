// Package backendtest runs an in-process Cloud Monitoring metric service for tests.
package backendtest

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"google.golang.org/api/option"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Service is a fake MetricService keeping descriptors in memory and
// recording every CreateTimeSeries request it accepts.
type Service struct {
	monitoringpb.UnimplementedMetricServiceServer

	mu          sync.Mutex
	descriptors map[string]*metricpb.MetricDescriptor
	requests    []*monitoringpb.CreateTimeSeriesRequest
	creates     int

	// WriteErr, when set, is returned by CreateTimeSeries for the given
	// zero-based request number.
	WriteErr map[int]error
	// GetErr, when set, is returned by every GetMetricDescriptor call.
	GetErr error
}

// NewService returns an empty fake service.
func NewService() *Service {
	return &Service{
		descriptors: make(map[string]*metricpb.MetricDescriptor),
		WriteErr:    make(map[int]error),
	}
}

// AddDescriptor stores d under its resource name, as if created earlier.
func (s *Service) AddDescriptor(d *metricpb.MetricDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descriptors[d.GetName()] = proto.Clone(d).(*metricpb.MetricDescriptor)
}

// Requests returns the accepted CreateTimeSeries requests in arrival order.
func (s *Service) Requests() []*monitoringpb.CreateTimeSeriesRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*monitoringpb.CreateTimeSeriesRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Creates returns how many descriptors were created through the API.
func (s *Service) Creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

func (s *Service) GetMetricDescriptor(_ context.Context, req *monitoringpb.GetMetricDescriptorRequest) (*metricpb.MetricDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	d, ok := s.descriptors[req.GetName()]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "could not find descriptor for metric %s", req.GetName())
	}
	return proto.Clone(d).(*metricpb.MetricDescriptor), nil
}

func (s *Service) CreateMetricDescriptor(_ context.Context, req *monitoringpb.CreateMetricDescriptorRequest) (*metricpb.MetricDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := proto.Clone(req.GetMetricDescriptor()).(*metricpb.MetricDescriptor)
	d.Name = fmt.Sprintf("%s/metricDescriptors/%s", req.GetName(), d.GetType())
	s.descriptors[d.Name] = d
	s.creates++
	return proto.Clone(d).(*metricpb.MetricDescriptor), nil
}

func (s *Service) CreateTimeSeries(_ context.Context, req *monitoringpb.CreateTimeSeriesRequest) (*emptypb.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.requests)
	s.requests = append(s.requests, proto.Clone(req).(*monitoringpb.CreateTimeSeriesRequest))
	if err, ok := s.WriteErr[n]; ok {
		return nil, err
	}
	for _, ts := range req.GetTimeSeries() {
		if len(ts.GetPoints()) != 1 {
			return nil, status.Errorf(codes.InvalidArgument, "only one point can be written per TimeSeries per request, got %d", len(ts.GetPoints()))
		}
	}
	return &emptypb.Empty{}, nil
}

// Dial serves svc over an in-memory listener and returns a connection to it.
// The server is stopped with t.Cleanup.
func Dial(t *testing.T, svc *Service) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	monitoringpb.RegisterMetricServiceServer(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	return conn
}

// Start returns a real metric client talking to svc in-process.
func Start(t *testing.T, svc *Service) *monitoring.MetricClient {
	t.Helper()

	client, err := monitoring.NewMetricClient(context.Background(), option.WithGRPCConn(Dial(t, svc)))
	if err != nil {
		t.Fatalf("new metric client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
