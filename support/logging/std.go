// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import (
	"fmt"
	"log"
)

// Std adapts a standard library *log.Logger to L, prefixing each line with
// its level.
//
// This is the logger the demo CLI wires in by default; a host embedding the
// core for a GUI would instead plug in its own structured logger (anything
// conforming to zap's SugaredLogger satisfies L without an adapter).
type Std struct {
	*log.Logger
}

var _ L = Std{}

func (s Std) Error(args ...interface{})            { s.emit("ERROR", fmt.Sprint(args...)) }
func (s Std) Warn(args ...interface{})             { s.emit("WARN", fmt.Sprint(args...)) }
func (s Std) Info(args ...interface{})             { s.emit("INFO", fmt.Sprint(args...)) }
func (s Std) Debug(args ...interface{})            { s.emit("DEBUG", fmt.Sprint(args...)) }
func (s Std) Errorf(f string, args ...interface{}) { s.emit("ERROR", fmt.Sprintf(f, args...)) }
func (s Std) Warnf(f string, args ...interface{})  { s.emit("WARN", fmt.Sprintf(f, args...)) }
func (s Std) Infof(f string, args ...interface{})  { s.emit("INFO", fmt.Sprintf(f, args...)) }
func (s Std) Debugf(f string, args ...interface{}) { s.emit("DEBUG", fmt.Sprintf(f, args...)) }

func (s Std) emit(level, msg string) {
	// calldepth 3: emit -> Error/Errorf/... -> caller.
	_ = s.Output(3, "["+level+"] "+msg)
}
