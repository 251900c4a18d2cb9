package protocol

import "time"

// QueryStage names the server-side processing stage a query should run
// to, mirroring the native protocol's query_processing_stage field.
type QueryStage int32

const (
	StageComplete QueryStage = iota
	StageFetchColumns
	StageWithMergeableState
	StageWithMergeableStateAfterAggregation
)

// SettingFlags marks a setting as important (the server must reject it if
// unknown) and/or custom (a user-defined, not built-in, setting).
type SettingFlags struct {
	Important bool
	Custom    bool
}

// Setting is one key/value pair in a Query packet's settings map, carrying
// its flags for the settings-as-strings wire format.
type Setting struct {
	Key   string
	Value string
	Flags SettingFlags
}

// ClientInfo describes the client issuing a query, sent as part of the
// Query packet per §3.4 and §4.7.
type ClientInfo struct {
	Application      string
	ClientVersionMajor int
	ClientVersionMinor int
	ClientVersionPatch int
	ProtocolVersion  int
	InitialUser      string
	InitialQueryID   string
	InitialAddress   string
	OSUser           string
	Hostname         string
}

// ServerHelloInfo is the payload of a ServerHello packet.
type ServerHelloInfo struct {
	Name        string
	Major       int
	Minor       int
	Patch       int
	Revision    int
	Timezone    string
	DisplayName string
}

// Progress is the payload of a Progress packet, emitted as a side-channel
// event during InQuery per §6.
type Progress struct {
	ReadRows     uint64
	ReadBytes    uint64
	TotalRows    uint64
	WrittenRows  uint64
	WrittenBytes uint64
	Elapsed      time.Duration
}

// ExceptionFrame is one entry in a server exception's nested cause chain.
type ExceptionFrame struct {
	Code    int32
	Name    string
	Message string
	Stack   string
}

// Exception is the payload of an Exception packet: the full cause chain,
// outermost frame first, matching what the caller should see first per §7.
type Exception struct {
	Frames []ExceptionFrame
}

func (e *Exception) Error() string {
	if len(e.Frames) == 0 {
		return "protocol: server exception"
	}
	return e.Frames[0].Message
}

// ProfileInfo is the payload of a ProfileInfo packet.
type ProfileInfo struct {
	Rows                 uint64
	Blocks               uint64
	Bytes                uint64
	AppliedLimit         bool
	RowsBeforeLimit      uint64
	CalculatedRowsBeforeLimit bool
}
