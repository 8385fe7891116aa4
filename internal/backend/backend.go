// Package backend wires the sink to the Cloud Monitoring metric service.
package backend

import (
	"context"
	"strings"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// CustomMetricPrefix is the namespace every user-defined metric type must live in.
const CustomMetricPrefix = "custom.googleapis.com/"

//go:generate mockgen -destination=mocks/mock_backend.go -package=mocks . MetricClient

// MetricClient is the subset of the metric service the sink calls.
type MetricClient interface {
	GetMetricDescriptor(ctx context.Context, req *monitoringpb.GetMetricDescriptorRequest, opts ...gax.CallOption) (*metricpb.MetricDescriptor, error)
	CreateMetricDescriptor(ctx context.Context, req *monitoringpb.CreateMetricDescriptorRequest, opts ...gax.CallOption) (*metricpb.MetricDescriptor, error)
	CreateTimeSeries(ctx context.Context, req *monitoringpb.CreateTimeSeriesRequest, opts ...gax.CallOption) error
}

var _ MetricClient = (*monitoring.MetricClient)(nil)

// NoRetry turns off the client's own retry policy for one call. Callers that
// retry do it themselves, writes never do.
var NoRetry = gax.WithRetry(func() gax.Retryer { return nil })

// Options configures the real client.
type Options struct {
	Endpoint        string // host:port override, e.g. an emulator
	CredentialsFile string // service account JSON; empty uses application default credentials
	Insecure        bool   // plaintext gRPC without authentication
}

// NewClient dials the metric service. Extra options are appended last and win.
func NewClient(ctx context.Context, opts Options, extra ...option.ClientOption) (*monitoring.MetricClient, error) {
	var co []option.ClientOption
	if opts.Endpoint != "" {
		co = append(co, option.WithEndpoint(opts.Endpoint))
	}
	if opts.CredentialsFile != "" {
		co = append(co, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Insecure {
		co = append(co,
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	co = append(co, extra...)
	return monitoring.NewMetricClient(ctx, co...)
}

// ProjectPath returns the projects/{project} resource name.
func ProjectPath(project string) string {
	return "projects/" + project
}

// MetricDescriptorPath returns projects/{project}/metricDescriptors/{type}.
func MetricDescriptorPath(project, metricType string) string {
	return ProjectPath(project) + "/metricDescriptors/" + metricType
}

// IsCustomMetricType reports whether t is a non-empty type under CustomMetricPrefix.
func IsCustomMetricType(t string) bool {
	return strings.HasPrefix(t, CustomMetricPrefix) && len(t) > len(CustomMetricPrefix)
}
