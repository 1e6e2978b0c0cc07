package contract

import (
	"context"

	"github.com/huangsam/depthaudit/schema"
	"github.com/stretchr/testify/mock"
)

// MockAnnotationSource is a mock implementation of AnnotationSource for testing.
type MockAnnotationSource struct {
	mock.Mock
}

var _ AnnotationSource = &MockAnnotationSource{} // Compile-time check

// LoadHits implements the AnnotationSource interface.
func (m *MockAnnotationSource) LoadHits(ctx context.Context) ([]*schema.HitRecord, error) {
	ret := m.Called(ctx)
	hits, _ := ret.Get(0).([]*schema.HitRecord)
	return hits, ret.Error(1)
}

// MockGroundTruthSource is a mock implementation of GroundTruthSource for testing.
type MockGroundTruthSource struct {
	mock.Mock
}

var _ GroundTruthSource = &MockGroundTruthSource{} // Compile-time check

// LoadTruths implements the GroundTruthSource interface.
func (m *MockGroundTruthSource) LoadTruths(ctx context.Context) (*schema.TruthSet, error) {
	ret := m.Called(ctx)
	set, _ := ret.Get(0).(*schema.TruthSet)
	return set, ret.Error(1)
}

// MockRotationProvider is a mock implementation of RotationProvider for testing.
type MockRotationProvider struct {
	mock.Mock
}

var _ RotationProvider = &MockRotationProvider{} // Compile-time check

// LoadRotations implements the RotationProvider interface.
func (m *MockRotationProvider) LoadRotations(ctx context.Context) (*schema.RotationTable, error) {
	ret := m.Called(ctx)
	table, _ := ret.Get(0).(*schema.RotationTable)
	return table, ret.Error(1)
}

// MockResultSink is a mock implementation of ResultSink for testing.
type MockResultSink struct {
	mock.Mock
}

var _ ResultSink = &MockResultSink{} // Compile-time check

// Write implements the ResultSink interface.
func (m *MockResultSink) Write(ctx context.Context, report *schema.Report) error {
	ret := m.Called(ctx, report)
	return ret.Error(0)
}
