// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Level is a logging verbosity threshold.
type Level int

const (
	// DebugLevel emits everything.
	DebugLevel Level = iota
	// InfoLevel emits Info and above.
	InfoLevel
	// WarnLevel emits Warn and above.
	WarnLevel
	// ErrorLevel emits only Error.
	ErrorLevel
)

var levelName = map[Level]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
}

var levelValue = map[string]Level{
	"debug": DebugLevel,
	"info":  InfoLevel,
	"warn":  WarnLevel,
	"error": ErrorLevel,
}

func (lv Level) String() string {
	if s, ok := levelName[lv]; ok {
		return s
	}
	return "unknown"
}

// AtLevel wraps l so that calls below min are suppressed.
func AtLevel(l L, min Level) L {
	return &leveled{L: Must(l), min: min}
}

type leveled struct {
	L
	min Level
}

func (lv *leveled) Error(args ...interface{}) {
	if lv.min <= ErrorLevel {
		lv.L.Error(args...)
	}
}

func (lv *leveled) Warn(args ...interface{}) {
	if lv.min <= WarnLevel {
		lv.L.Warn(args...)
	}
}

func (lv *leveled) Info(args ...interface{}) {
	if lv.min <= InfoLevel {
		lv.L.Info(args...)
	}
}

func (lv *leveled) Debug(args ...interface{}) {
	if lv.min <= DebugLevel {
		lv.L.Debug(args...)
	}
}

func (lv *leveled) Errorf(f string, args ...interface{}) {
	if lv.min <= ErrorLevel {
		lv.L.Errorf(f, args...)
	}
}

func (lv *leveled) Warnf(f string, args ...interface{}) {
	if lv.min <= WarnLevel {
		lv.L.Warnf(f, args...)
	}
}

func (lv *leveled) Infof(f string, args ...interface{}) {
	if lv.min <= InfoLevel {
		lv.L.Infof(f, args...)
	}
}

func (lv *leveled) Debugf(f string, args ...interface{}) {
	if lv.min <= DebugLevel {
		lv.L.Debugf(f, args...)
	}
}

// LevelFlag is a pflag.Value implementation that stores a Level, in the
// same shape as streamfile.CompressionFlag in the teacher repo.
type LevelFlag Level

var _ pflag.Value = (*LevelFlag)(nil)

func (lf *LevelFlag) String() string { return Level(*lf).String() }

// Set implements pflag.Value.
func (lf *LevelFlag) Set(v string) error {
	if lv, ok := levelValue[strings.ToLower(v)]; ok {
		*lf = LevelFlag(lv)
		return nil
	}
	return errors.Errorf("unknown log level: %q", v)
}

// Type implements pflag.Value.
func (lf *LevelFlag) Type() string { return "logging.Level" }

// Value returns the Level held by this flag.
func (lf LevelFlag) Value() Level { return Level(lf) }

// LevelFlagValues returns the list of possible values for a LevelFlag.
func LevelFlagValues() string {
	names := make([]string, 0, len(levelValue))
	for name := range levelValue {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return levelValue[names[i]] < levelValue[names[j]] })
	return strings.Join(names, ", ")
}
