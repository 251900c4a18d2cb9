package signals

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/protocol"
	"github.com/TFMV/chnative/wire"
)

// DecodeServerException reads a server exception chain: repeated frames of
// (code, name, message, stack, has-nested) terminated by has-nested=false,
// outermost frame first (§4.7 tag 2, §7).
func DecodeServerException(r *wire.Reader) (*protocol.Exception, error) {
	var frames []protocol.ExceptionFrame
	for {
		var frame protocol.ExceptionFrame
		code, err := r.Int32()
		if err != nil {
			return nil, errors.Wrap(err, "decode exception code")
		}
		frame.Code = code

		if frame.Name, err = r.String(); err != nil {
			return nil, errors.Wrap(err, "decode exception name")
		}
		if frame.Message, err = r.String(); err != nil {
			return nil, errors.Wrap(err, "decode exception message")
		}
		if frame.Stack, err = r.String(); err != nil {
			return nil, errors.Wrap(err, "decode exception stack")
		}
		frames = append(frames, frame)

		hasNested, err := r.Bool()
		if err != nil {
			return nil, errors.Wrap(err, "decode exception has-nested flag")
		}
		if !hasNested {
			break
		}
	}
	return &protocol.Exception{Frames: frames}, nil
}
