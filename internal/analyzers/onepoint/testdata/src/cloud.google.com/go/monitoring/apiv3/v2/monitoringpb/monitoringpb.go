package monitoringpb

type Point struct {
	Value int64
}

type TimeSeries struct {
	Points []*Point
}

type CreateTimeSeriesRequest struct {
	Name       string
	TimeSeries []*TimeSeries
}
