// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FrameVerb is the first field of a transfer frame header line.
type FrameVerb string

const (
	// ReqVerb opens a handshake: "REQ|<file_name>|<file_size>".
	ReqVerb FrameVerb = "REQ"
	// DataVerb opens a chunk stream: "DATA|<file_name>|<offset>".
	DataVerb FrameVerb = "DATA"
	// AccVerb accepts a handshake: "ACC".
	AccVerb FrameVerb = "ACC"
	// RejVerb rejects a handshake: "REJ" or "REJ|<reason>".
	RejVerb FrameVerb = "REJ"
)

// ReqFrame is a parsed "REQ|<file_name>|<file_size>" header line.
type ReqFrame struct {
	FileName string
	FileSize uint64
}

// String renders f in its wire format, without the trailing newline.
func (f *ReqFrame) String() string {
	return fmt.Sprintf("%s|%s|%d", ReqVerb, f.FileName, f.FileSize)
}

// DataFrame is a parsed "DATA|<file_name>|<offset>" header line.
type DataFrame struct {
	FileName string
	Offset   uint64
}

// String renders f in its wire format, without the trailing newline.
func (f *DataFrame) String() string {
	return fmt.Sprintf("%s|%s|%d", DataVerb, f.FileName, f.Offset)
}

// ParseHeaderLine splits a single header line (with no trailing newline) on
// '|' and classifies it by its leading verb.
//
// It returns exactly one of (*ReqFrame, *DataFrame); an unrecognized or
// under-sized verb yields (nil, nil, nil) so the caller can drop it silently,
// per the protocol's "unknown verbs are dropped" rule. A non-nil error is
// only returned for a recognized verb whose fields fail to parse in a way
// that is not covered by a documented fallback.
func ParseHeaderLine(line string) (req *ReqFrame, data *DataFrame, err error) {
	fields := strings.Split(line, "|")
	if len(fields) < 3 {
		return nil, nil, nil
	}

	switch FrameVerb(fields[0]) {
	case ReqVerb:
		size, perr := strconv.ParseUint(fields[2], 10, 64)
		if perr != nil {
			return nil, nil, errors.Wrap(perr, "parsing REQ file_size")
		}
		return &ReqFrame{FileName: fields[1], FileSize: size}, nil, nil

	case DataVerb:
		offset, perr := strconv.ParseUint(fields[2], 10, 64)
		if perr != nil {
			return nil, nil, errors.Wrap(perr, "parsing DATA offset")
		}
		return nil, &DataFrame{FileName: fields[1], Offset: offset}, nil

	default:
		return nil, nil, nil
	}
}

// AcceptResponse is the handshake's affirmative reply line: "ACC\n".
const AcceptResponse = "ACC\n"

// RejectResponse renders the handshake's negative reply line.
//
// If reason is empty, it renders the bare "REJ\n" form used when the host
// callback declined the transfer; otherwise it renders "REJ|<reason>\n".
func RejectResponse(reason string) string {
	if reason == "" {
		return "REJ\n"
	}
	return fmt.Sprintf("REJ|%s\n", reason)
}

// IsAccept reports whether a handshake response line (with or without its
// trailing newline already stripped) signals acceptance.
func IsAccept(line string) bool {
	return strings.HasPrefix(line, string(AccVerb))
}
