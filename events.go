package chnative

import (
	"context"
	"io"

	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/block"
	"github.com/TFMV/chnative/protocol"
	"github.com/TFMV/chnative/protocol/signals"
)

// EventKind identifies what a ResponseStream event carries.
type EventKind int

const (
	EventData EventKind = iota
	EventProgress
	EventProfileInfo
	EventProfileEvents
	EventLog
	EventTotals
	EventExtremes
	EventTableColumns
)

// Event is one packet surfaced to the caller during response streaming
// (§6's "emitted events"). Exactly one of the typed fields is populated,
// matching Kind.
type Event struct {
	Kind         EventKind
	Block        *block.Block
	Progress     *protocol.Progress
	ProfileInfo  *protocol.ProfileInfo
	TableColumns string
}

// InsertReport summarizes a completed insert: the server's final progress
// and, if sent, profiling stats.
type InsertReport struct {
	Progress    *protocol.Progress
	ProfileInfo *protocol.ProfileInfo
}

func emptyBlock() *block.Block { return &block.Block{} }

// Query writes a Query packet and the header-delimiting empty Data block,
// moves the session to InQuery, and returns a ResponseStream the caller
// pulls events from lazily (§6). q.Input must be nil; use Insert for
// queries with input blocks.
func (s *Session) Query(ctx context.Context, q *Query) (*ResponseStream, error) {
	if q.Input != nil {
		return nil, newErrorf(CodeProtocolViolation, "Query does not accept input blocks; use Insert")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return nil, newErrorf(CodeProtocolViolation, "query illegal in phase %s", s.phase)
	}
	if q.ID == "" {
		q.ID = s.nextQueryID()
	}
	if err := s.applyDeadline(ctx); err != nil {
		return nil, err
	}

	if err := s.sendQueryHeader(q); err != nil {
		return nil, err
	}
	s.setPhase(PhaseInQuery)
	return &ResponseStream{session: s}, nil
}

// Insert writes a Query packet, reads the server's expected-schema probe,
// streams q.Input's blocks, writes the terminating empty Data block, and
// drains the response to EndOfStream or Exception (§4.7 "Query" step 3).
func (s *Session) Insert(ctx context.Context, q *Query) (*InsertReport, error) {
	if q.Input == nil {
		return nil, newErrorf(CodeProtocolViolation, "Insert requires an Input callback")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return nil, newErrorf(CodeProtocolViolation, "insert illegal in phase %s", s.phase)
	}
	if q.ID == "" {
		q.ID = s.nextQueryID()
	}
	if err := s.applyDeadline(ctx); err != nil {
		return nil, err
	}

	if err := s.sendQueryHeader(q); err != nil {
		return nil, err
	}
	s.setPhase(PhaseInQuery)

	// The server replies with an empty (header-only) Data block describing
	// the schema input batches must be mapped to.
	tag, err := s.readTag()
	if err != nil {
		return nil, err
	}
	switch protocol.ServerTag(tag) {
	case protocol.ServerData:
		if _, err := s.readBlock(); err != nil {
			return nil, err
		}
	case protocol.ServerException:
		return nil, s.drainException()
	default:
		return nil, s.terminate(newErrorf(CodeProtocolViolation, "expected schema block, got tag %d", tag))
	}

	for {
		blk, err := q.Input()
		if err != nil {
			return nil, wrapError(CodeIO, err, "input callback")
		}
		if blk == nil {
			break
		}
		if err := s.writeBlock(protocol.ClientData, blk); err != nil {
			return nil, err
		}
	}
	if err := s.writeBlock(protocol.ClientData, emptyBlock()); err != nil {
		return nil, err
	}
	if err := s.flush(); err != nil {
		return nil, err
	}

	report := &InsertReport{}
	for {
		tag, err := s.readTag()
		if err != nil {
			return nil, err
		}
		switch protocol.ServerTag(tag) {
		case protocol.ServerProgress:
			p, err := signals.DecodeServerProgress(s.r)
			if err != nil {
				return nil, wrapError(CodeMalformedFrame, err, "decode progress")
			}
			report.Progress = p
		case protocol.ServerProfileInfo:
			pi, err := signals.DecodeServerProfileInfo(s.r)
			if err != nil {
				return nil, wrapError(CodeMalformedFrame, err, "decode profile info")
			}
			report.ProfileInfo = pi
		case protocol.ServerEndOfStream:
			s.setPhase(PhaseIdle)
			return report, nil
		case protocol.ServerException:
			return report, s.drainException()
		default:
			return nil, s.terminate(newErrorf(CodeProtocolViolation, "unexpected tag %d awaiting insert completion", tag))
		}
	}
}

func (s *Session) sendQueryHeader(q *Query) error {
	cq := &signals.ClientQuery{
		QueryID:            q.ID,
		Info:               s.buildClientInfo(),
		Settings:           s.buildSettings(q),
		Stage:              q.Stage,
		CompressionEnabled: s.compressionEnabled,
		Body:               q.SQL,
		Revision:           s.serverRevision,
	}
	if err := s.writeTag(protocol.ClientQuery); err != nil {
		return err
	}
	if err := cq.Encode(s.w); err != nil {
		return s.terminate(wrapError(CodeIO, err, "write query packet"))
	}
	if err := s.writeBlock(protocol.ClientData, emptyBlock()); err != nil {
		return err
	}
	return s.flush()
}

// drainException decodes a server exception chain and returns the session
// to Idle: ServerException is not terminal (§7).
func (s *Session) drainException() error {
	exc, err := signals.DecodeServerException(s.r)
	if err != nil {
		return s.terminate(wrapError(CodeMalformedFrame, err, "decode exception"))
	}
	s.setPhase(PhaseIdle)
	return wrapError(CodeServerException, exc, "server exception")
}

// ResponseStream is a lazy pull iterator over one query's response packets
// (§5's backpressure requirement: the caller pulls batches lazily).
type ResponseStream struct {
	session *Session
	closed  bool
}

// Next blocks for the next event. It returns io.EOF once EndOfStream has
// been received, at which point the session is back in Idle.
func (rs *ResponseStream) Next(ctx context.Context) (*Event, error) {
	if rs.closed {
		return nil, io.EOF
	}
	s := rs.session
	if err := s.applyDeadline(ctx); err != nil {
		rs.closed = true
		return nil, err
	}

	for {
		tag, err := s.readTag()
		if err != nil {
			rs.closed = true
			return nil, err
		}
		switch protocol.ServerTag(tag) {
		case protocol.ServerData:
			b, err := s.readBlock()
			if err != nil {
				rs.closed = true
				return nil, err
			}
			return &Event{Kind: EventData, Block: b}, nil
		case protocol.ServerTotals:
			b, err := s.readBlock()
			if err != nil {
				rs.closed = true
				return nil, err
			}
			return &Event{Kind: EventTotals, Block: b}, nil
		case protocol.ServerExtremes:
			b, err := s.readBlock()
			if err != nil {
				rs.closed = true
				return nil, err
			}
			return &Event{Kind: EventExtremes, Block: b}, nil
		case protocol.ServerLog:
			b, err := s.readBlock()
			if err != nil {
				rs.closed = true
				return nil, err
			}
			return &Event{Kind: EventLog, Block: b}, nil
		case protocol.ServerProfileEvents:
			b, err := s.readBlock()
			if err != nil {
				rs.closed = true
				return nil, err
			}
			return &Event{Kind: EventProfileEvents, Block: b}, nil
		case protocol.ServerProgress:
			p, err := signals.DecodeServerProgress(s.r)
			if err != nil {
				rs.closed = true
				return nil, wrapError(CodeMalformedFrame, err, "decode progress")
			}
			return &Event{Kind: EventProgress, Progress: p}, nil
		case protocol.ServerProfileInfo:
			pi, err := signals.DecodeServerProfileInfo(s.r)
			if err != nil {
				rs.closed = true
				return nil, wrapError(CodeMalformedFrame, err, "decode profile info")
			}
			return &Event{Kind: EventProfileInfo, ProfileInfo: pi}, nil
		case protocol.ServerTableColumns:
			tc, err := signals.DecodeServerTableColumns(s.r)
			if err != nil {
				rs.closed = true
				return nil, wrapError(CodeMalformedFrame, err, "decode table columns")
			}
			return &Event{Kind: EventTableColumns, TableColumns: tc}, nil
		case protocol.ServerEndOfStream:
			s.setPhase(PhaseIdle)
			rs.closed = true
			return nil, io.EOF
		case protocol.ServerException:
			rs.closed = true
			return nil, s.drainException()
		default:
			rs.closed = true
			return nil, s.terminate(newErrorf(CodeProtocolViolation, "unexpected tag %d in InQuery", tag))
		}
	}
}

// Cancel writes Cancel and drains every remaining packet until EndOfStream
// or Exception, per §4.7's "must continue draining" rule. The session
// returns to Idle iff the drain completes; otherwise it is Terminated.
func (rs *ResponseStream) Cancel(ctx context.Context) error {
	if rs.closed {
		return nil
	}
	s := rs.session
	if err := s.writeTag(protocol.ClientCancel); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	for {
		_, err := rs.Next(ctx)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		var chErr *Error
		if errors.As(err, &chErr) && chErr.Code.Equals(CodeServerException) {
			return nil
		}
		return err
	}
}
