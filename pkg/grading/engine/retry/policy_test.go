package retry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/gradeloop/gradeloop/pkg/grading/engine/retry"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry_OnlyNetworkKind(t *testing.T) {
	p := retry.NewFixedPolicy(3, time.Second)

	assert.True(t, p.ShouldRetry(exception.NewGradingErrorf("llm", exception.KindNetwork, "timeout")))
	assert.False(t, p.ShouldRetry(exception.NewGradingErrorf("detect", exception.KindElementDetection, "missing anchor")))
	assert.False(t, p.ShouldRetry(exception.NewGradingErrorf("score", exception.KindAIScoring, "model failure")))
	assert.False(t, p.ShouldRetry(errors.New("untagged")))
	assert.False(t, p.ShouldRetry(nil))
}

func TestShouldRetry_WrappedNetworkError(t *testing.T) {
	p := retry.NewFixedPolicy(3, time.Second)
	inner := exception.NewGradingErrorf("llm", exception.KindNetwork, "connection reset")
	outer := exception.NewGradingError("score", "scoring call failed", exception.KindOf(inner), inner)

	assert.True(t, p.ShouldRetry(outer))
}

func TestBackoffAndAttempts(t *testing.T) {
	p := retry.NewFixedPolicy(5, 250*time.Millisecond)

	assert.Equal(t, 5, p.GetMaxAttempts())
	assert.Equal(t, 250*time.Millisecond, p.GetBackoffInterval(1))
	assert.Equal(t, 250*time.Millisecond, p.GetBackoffInterval(4))
}
