package chnative

import (
	"github.com/TFMV/chnative/block"
	"github.com/TFMV/chnative/protocol"
)

// InputFunc lazily produces the next input block for an insert (§6's
// "row-building callback"). Returning a nil block and a nil error signals
// end of input.
type InputFunc func() (*block.Block, error)

// Query bundles a SQL text with the identifying and configuration
// fields the Query packet needs (§3.4).
type Query struct {
	SQL string
	// ID is a stable query identifier; if empty, Connect's Session
	// generates one.
	ID string
	// Settings is a key/value map of per-query settings layered on top of
	// the Session's defaults.
	Settings map[string]string
	// Important marks the (subset of) Settings the server must reject
	// outright if it does not recognize them.
	Important map[string]bool
	Stage     protocol.QueryStage
	// Input supplies blocks for an INSERT; nil for a SELECT.
	Input InputFunc
}

func (s *Session) buildClientInfo() protocol.ClientInfo {
	return protocol.ClientInfo{
		Application:        s.opts.Application,
		ClientVersionMajor: s.opts.MajorVersion,
		ClientVersionMinor: s.opts.MinorVersion,
		ClientVersionPatch: 0,
		ProtocolVersion:    protocol.ClientProtocolRevision,
		InitialUser:        s.auth.Username,
		InitialAddress:     s.conn.RemoteAddr().String(),
		OSUser:             "",
		Hostname:           "",
	}
}

func (s *Session) buildSettings(q *Query) []protocol.Setting {
	merged := make(map[string]string, len(s.opts.Settings)+len(q.Settings))
	for k, v := range s.opts.Settings {
		merged[k] = v
	}
	for k, v := range q.Settings {
		merged[k] = v
	}
	settings := make([]protocol.Setting, 0, len(merged))
	for k, v := range merged {
		settings = append(settings, protocol.Setting{
			Key:   k,
			Value: v,
			Flags: protocol.SettingFlags{Important: q.Important[k]},
		})
	}
	return settings
}
