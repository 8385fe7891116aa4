package a

import "cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"

func single() *monitoringpb.CreateTimeSeriesRequest {
	return &monitoringpb.CreateTimeSeriesRequest{
		Name:       "projects/p",
		TimeSeries: []*monitoringpb.TimeSeries{{Points: []*monitoringpb.Point{{Value: 1}}}},
	}
}

func batched(a, b *monitoringpb.TimeSeries) *monitoringpb.CreateTimeSeriesRequest {
	return &monitoringpb.CreateTimeSeriesRequest{
		Name:       "projects/p",
		TimeSeries: []*monitoringpb.TimeSeries{a, b}, // want `CreateTimeSeriesRequest.TimeSeries literal has 2 elements`
	}
}

func empty() monitoringpb.CreateTimeSeriesRequest {
	return monitoringpb.CreateTimeSeriesRequest{
		TimeSeries: []*monitoringpb.TimeSeries{}, // want `CreateTimeSeriesRequest.TimeSeries literal has 0 elements`
	}
}

func points() *monitoringpb.TimeSeries {
	return &monitoringpb.TimeSeries{
		Points: []*monitoringpb.Point{{Value: 1}, {Value: 2}}, // want `TimeSeries.Points literal has 2 elements`
	}
}

func built(series []*monitoringpb.TimeSeries) *monitoringpb.CreateTimeSeriesRequest {
	return &monitoringpb.CreateTimeSeriesRequest{TimeSeries: series}
}
