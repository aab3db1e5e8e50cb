package testutil

import (
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/hyperlane-xyz/lander/adapter/mocks"
)

// PrepareMockedAdapter returns a mocked chain adapter with the static chain
// parameters stubbed out.
func PrepareMockedAdapter(t *testing.T, blockTime time.Duration, maxBatchSize uint32) *mocks.MockChainAdapter {
	ctl := gomock.NewController(t)
	mockAdapter := mocks.NewMockChainAdapter(ctl)

	mockAdapter.EXPECT().EstimatedBlockTime().Return(blockTime).AnyTimes()
	mockAdapter.EXPECT().MaxBatchSize().Return(maxBatchSize).AnyTimes()

	return mockAdapter
}
