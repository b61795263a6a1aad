package wbem

import (
	"context"
	"errors"
	"fmt"
)

// Session errors.
var (
	ErrSessionClosed = errors.New("enumeration session is closed")
	ErrSessionFailed = errors.New("enumeration session has failed")
)

type sessionState int

const (
	sessionIdle sessionState = iota
	sessionOpen
	sessionDraining
	sessionClosed
	sessionFailed
)

func (s sessionState) String() string {
	switch s {
	case sessionIdle:
		return "idle"
	case sessionOpen:
		return "open"
	case sessionDraining:
		return "draining"
	case sessionClosed:
		return "closed"
	case sessionFailed:
		return "failed"
	}
	return fmt.Sprintf("sessionState(%d)", int(s))
}

type openFunc func(ctx context.Context) (Batch, error)
type pullFunc func(ctx context.Context, enumContext, namespace string, maxObjectCount uint32) (Batch, error)

// enumerationSession drives one server-side pull enumeration through
// its lifecycle: the first nextBatch issues the open call, later ones
// pull against the enumeration context, and the final batch (end of
// sequence) closes the session. Not safe for concurrent use.
type enumerationSession struct {
	conn      *Connection
	namespace string
	open      openFunc
	pull      pullFunc
	maxCount  uint32

	state       sessionState
	enumContext string
}

// nextBatch returns the next chunk. After a batch with EndOfSequence
// the session is closed and further calls return ErrSessionClosed. Any
// transport or server error moves the session to failed; the
// enumeration context is considered lost.
func (s *enumerationSession) nextBatch(ctx context.Context) (Batch, error) {
	switch s.state {
	case sessionClosed:
		return Batch{}, ErrSessionClosed
	case sessionFailed:
		return Batch{}, ErrSessionFailed
	}

	var batch Batch
	var err error
	next := sessionDraining
	if s.state == sessionIdle {
		batch, err = s.open(ctx)
		next = sessionOpen
	} else {
		batch, err = s.pull(ctx, s.enumContext, s.namespace, s.maxCount)
	}
	if err != nil {
		s.state = sessionFailed
		return Batch{}, err
	}

	if batch.EndOfSequence {
		s.state = sessionClosed
		s.enumContext = ""
		return batch, nil
	}
	s.enumContext = batch.Context
	s.state = next
	return batch, nil
}

// abandon terminates the enumeration before its end of sequence. The
// close is best effort: failures are logged, not returned, because the
// server reclaims abandoned contexts on its operation timeout anyway.
func (s *enumerationSession) abandon(ctx context.Context) {
	if s.state != sessionOpen && s.state != sessionDraining {
		s.state = sessionClosed
		return
	}
	if err := s.conn.CloseEnumeration(ctx, s.enumContext, s.namespace); err != nil {
		s.conn.log.Debug("CloseEnumeration for abandoned session: %v", err)
	}
	s.state = sessionClosed
	s.enumContext = ""
}
