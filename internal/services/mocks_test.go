package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stwalsh4118/landledger/internal/fxrate"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/repository"
)

// MockParcelRepository is a mock implementation of ParcelRepository for testing
type MockParcelRepository struct {
	mock.Mock
}

func (m *MockParcelRepository) List(ctx context.Context) ([]repository.ParcelRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]repository.ParcelRow)
	return rows, args.Error(1)
}

func (m *MockParcelRepository) FindByLocation(ctx context.Context, location string) (*repository.ParcelRow, error) {
	args := m.Called(ctx, location)
	row, _ := args.Get(0).(*repository.ParcelRow)
	return row, args.Error(1)
}

func (m *MockParcelRepository) Create(ctx context.Context, location string, record models.Record) (*repository.ParcelRow, error) {
	args := m.Called(ctx, location, record)
	row, _ := args.Get(0).(*repository.ParcelRow)
	return row, args.Error(1)
}

func (m *MockParcelRepository) Update(ctx context.Context, location, newLocation string, record models.Record) (*repository.ParcelRow, error) {
	args := m.Called(ctx, location, newLocation, record)
	row, _ := args.Get(0).(*repository.ParcelRow)
	return row, args.Error(1)
}

func (m *MockParcelRepository) Delete(ctx context.Context, location string) (bool, error) {
	args := m.Called(ctx, location)
	return args.Bool(0), args.Error(1)
}

// MockRateSource is a mock implementation of RateSource for testing
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) Rate(ctx context.Context) float64 {
	args := m.Called(ctx)
	return args.Get(0).(float64)
}

func (m *MockRateSource) Snapshot(ctx context.Context) fxrate.Snapshot {
	args := m.Called(ctx)
	return args.Get(0).(fxrate.Snapshot)
}
