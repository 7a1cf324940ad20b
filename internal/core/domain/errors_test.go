package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Distinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrProviderUnavailable,
		ErrProviderTimeout,
		ErrDimensionMismatch,
		ErrIndexIncompatible,
		ErrCorpusRead,
		ErrRebuildInProgress,
	}

	for i, err := range sentinels {
		assert.NotNil(t, err)
		assert.NotEmpty(t, err.Error())
		for j, other := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(err, other), "%v matches %v", err, other)
		}
	}
}

func TestErrors_WrappedMatching(t *testing.T) {
	wrapped := fmt.Errorf("document a.md: %w", ErrNotFound)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrCorpusRead))
}
