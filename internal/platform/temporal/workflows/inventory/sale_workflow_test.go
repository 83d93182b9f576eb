package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	inventoryports "github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	inventoryactivities "github.com/Apurer/reseller-ops-api/internal/platform/temporal/activities/inventory"
	"github.com/Apurer/reseller-ops-api/internal/shared/actor"
)

type SaleWorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func TestSaleWorkflowSuite(t *testing.T) {
	suite.Run(t, new(SaleWorkflowSuite))
}

func (s *SaleWorkflowSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterWorkflow(SaleWorkflow)
	s.env.RegisterActivityWithOptions(
		func(ctx context.Context, input inventoryactivities.SellInput) (*inventoryports.SaleResult, error) {
			return nil, errors.New("activity not mocked")
		},
		activity.RegisterOptions{Name: inventoryactivities.SellActivityName},
	)
}

func (s *SaleWorkflowSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func (s *SaleWorkflowSuite) TestSaleCompletes() {
	input := SaleWorkflowInput{Sale: inventoryactivities.SellInput{
		Command: inventoryports.SellInput{Product: "Widget", Quantity: 2},
		Actor:   actor.Actor{ID: "ops@company.com"},
	}}
	s.env.OnActivity(inventoryactivities.SellActivityName, mock.Anything, input.Sale).
		Return(&inventoryports.SaleResult{Product: "Widget", Sold: 2, UnitIDs: []int64{1, 3}}, nil).Once()

	s.env.ExecuteWorkflow(SaleWorkflow, input)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	var result inventoryports.SaleResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(2, result.Sold)
	s.Equal([]int64{1, 3}, result.UnitIDs)
}

func (s *SaleWorkflowSuite) TestInsufficientStockIsNotRetried() {
	input := SaleWorkflowInput{Sale: inventoryactivities.SellInput{
		Command: inventoryports.SellInput{Product: "Widget", Quantity: 5},
	}}
	shortage := &domain.InsufficientStockError{Product: "Widget", Available: 3, Requested: 5}
	s.env.OnActivity(inventoryactivities.SellActivityName, mock.Anything, input.Sale).
		Return(nil, inventoryactivities.ToApplicationError(shortage)).Once()

	s.env.ExecuteWorkflow(SaleWorkflow, input)

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Error(err)

	var restored *domain.InsufficientStockError
	s.Require().True(errors.As(inventoryactivities.FromApplicationError(err), &restored))
	s.Equal(3, restored.Available)
	s.Equal(5, restored.Requested)
}

func TestFromApplicationError_PassesThroughPlainErrors(t *testing.T) {
	plain := errors.New("connection reset")
	require.Same(t, plain, inventoryactivities.FromApplicationError(plain))
	require.Same(t, plain, inventoryactivities.ToApplicationError(plain))
}
