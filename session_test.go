package wbem

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	batches := []Batch{
		{Context: "C1"},
		{Context: "C1"},
		{EndOfSequence: true},
	}
	var pulled []string
	s := &enumerationSession{
		namespace: "root/cimv2",
		maxCount:  10,
		open: func(ctx context.Context) (Batch, error) {
			return batches[0], nil
		},
		pull: func(ctx context.Context, enumContext, namespace string, maxObjectCount uint32) (Batch, error) {
			pulled = append(pulled, enumContext)
			if len(pulled) == 1 {
				return batches[1], nil
			}
			return batches[2], nil
		},
	}

	assert.Equal(t, sessionIdle, s.state)

	_, err := s.nextBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sessionOpen, s.state)

	_, err = s.nextBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sessionDraining, s.state)

	b, err := s.nextBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, b.EndOfSequence)
	assert.Equal(t, sessionClosed, s.state)
	assert.Empty(t, s.enumContext)

	assert.Equal(t, []string{"C1", "C1"}, pulled)

	_, err = s.nextBatch(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionFailure(t *testing.T) {
	boom := errors.New("boom")
	s := &enumerationSession{
		open: func(ctx context.Context) (Batch, error) {
			return Batch{}, boom
		},
	}

	_, err := s.nextBatch(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, sessionFailed, s.state)

	_, err = s.nextBatch(context.Background())
	assert.ErrorIs(t, err, ErrSessionFailed)
}

func TestSessionAbandonBeforeOpen(t *testing.T) {
	s := &enumerationSession{}
	s.abandon(context.Background())
	assert.Equal(t, sessionClosed, s.state)
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "idle", sessionIdle.String())
	assert.Equal(t, "failed", sessionFailed.String())
}
