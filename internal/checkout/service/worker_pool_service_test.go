package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/commerce-order-fulfillment/internal/domain/shared"
)

// MockCheckoutService mocks the CheckoutService interface
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) ProcessCheckout(ctx context.Context, request *shared.CheckoutRequest) (*CheckoutResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutResult), args.Error(1)
}

func (m *MockCheckoutService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) error {
	args := m.Called(ctx, orderID, reason)
	return args.Error(0)
}

func poolTestRequest() *shared.CheckoutRequest {
	return &shared.CheckoutRequest{
		RequestID: uuid.New(),
		UserID:    uuid.New(),
		Items: []shared.CheckoutItem{
			{ProductID: "prod-a", Quantity: 1},
		},
		Email:         "jane.doe@example.com",
		CorrelationID: "corr1",
	}
}

func TestWorkerPoolCheckoutService_ProcessCheckout(t *testing.T) {
	logger := slog.Default()
	request := poolTestRequest()

	tests := []struct {
		name          string
		setupMocks    func(m *MockCheckoutService)
		expectedError error
	}{
		{
			name: "successful checkout",
			setupMocks: func(m *MockCheckoutService) {
				m.On("ProcessCheckout", mock.Anything, request).
					Return(&CheckoutResult{OrderID: uuid.New(), TotalAmount: 9720}, nil).Once()
			},
			expectedError: nil,
		},
		{
			name: "checkout error",
			setupMocks: func(m *MockCheckoutService) {
				m.On("ProcessCheckout", mock.Anything, request).
					Return(nil, errors.New("checkout error")).Once()
			},
			expectedError: errors.New("checkout error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBaseService := &MockCheckoutService{}

			workerPoolService, err := NewWorkerPoolCheckoutService(
				mockBaseService,
				WorkerPoolConfig{
					Size: 2,
				},
				logger,
			)
			assert.NoError(t, err)
			defer workerPoolService.Shutdown()

			tt.setupMocks(mockBaseService)
			ctx := context.Background()

			result, err := workerPoolService.ProcessCheckout(ctx, request)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, result)
				assert.Equal(t, int64(9720), result.TotalAmount)
			}

			mockBaseService.AssertExpectations(t)
		})
	}
}

func TestWorkerPoolCheckoutService_Concurrency(t *testing.T) {
	mockBaseService := &MockCheckoutService{}
	logger := slog.Default()

	workerPoolService, err := NewWorkerPoolCheckoutService(
		mockBaseService,
		WorkerPoolConfig{
			Size: 5,
		},
		logger,
	)
	assert.NoError(t, err)
	defer workerPoolService.Shutdown()

	var mu sync.Mutex
	counter := 0

	mockBaseService.On("ProcessCheckout", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		// Simulate some work
		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		counter++
		mu.Unlock()
	}).Return(&CheckoutResult{OrderID: uuid.New()}, nil)

	numRequests := 10
	var wg sync.WaitGroup
	wg.Add(numRequests)

	for i := 0; i < numRequests; i++ {
		go func() {
			defer wg.Done()

			ctx := context.Background()
			result, err := workerPoolService.ProcessCheckout(ctx, poolTestRequest())
			assert.NoError(t, err)
			assert.NotNil(t, result)
		}()
	}

	wg.Wait()

	assert.Equal(t, numRequests, counter)

	assert.True(t, workerPoolService.Running() > 0)
	assert.Equal(t, 5, workerPoolService.Capacity())
}

func TestWorkerPoolCheckoutService_CancelOrderPassthrough(t *testing.T) {
	mockBaseService := &MockCheckoutService{}

	workerPoolService, err := NewWorkerPoolCheckoutService(
		mockBaseService,
		WorkerPoolConfig{Size: 1},
		slog.Default(),
	)
	assert.NoError(t, err)
	defer workerPoolService.Shutdown()

	orderID := uuid.New()
	mockBaseService.On("CancelOrder", mock.Anything, orderID, "customer request").Return(nil).Once()

	err = workerPoolService.CancelOrder(context.Background(), orderID, "customer request")
	assert.NoError(t, err)
	mockBaseService.AssertExpectations(t)
}
