/*
 * Minio Cloud Storage, (C) 2015, 2016, 2017, 2018 Minio, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger is the scrub core's process-level failure reporting
// sink (spec.md §6): a user-facing console stream and an error log
// stream emitting the wire-format line "error:<i>:<source>:<path>:
// <kind>" for every distinct block-level error.
package logger

import (
	"encoding/json"
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	goerrors "github.com/go-errors/errors"
	"github.com/minio/mc/pkg/console"
)

// global colors.
var (
	colorBold = color.New(color.Bold).SprintFunc()
	colorRed  = color.New(color.FgRed).SprintfFunc()
)

var trimStrings []string

// Level enumerates the two severities the scrub core reports at.
type Level int8

const (
	// Error: recorded and logged, run continues.
	Error Level = iota + 1
	// Fatal: setup or unexpected error, process exits nonzero.
	Fatal
)

func (level Level) String() string {
	switch level {
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

const traceTimeFormat = "15:04:05 MST 01/02/2006"

var matchingFuncNames = [...]string{
	"cmd.main",
	"scrub.Run",
	// add more here ..
}

type blockErrorLine struct {
	Level  string `json:"level"`
	Time   string `json:"time"`
	Index  int64  `json:"index"`
	Source string `json:"source"`
	Path   string `json:"path"`
	Kind   string `json:"kind"`
}

var (
	quiet, jsonFlag bool
)

// EnableQuiet turns off the progress/console stream (errors still log).
func EnableQuiet() { quiet = true }

// EnableJSON switches the error stream to one-JSON-object-per-line.
func EnableJSON() { jsonFlag = true }

// Println is a quiet-aware wrapper around console.Println.
func Println(args ...interface{}) {
	if !quiet {
		console.Println(args...)
	}
}

// Printf is a quiet-aware wrapper around console.Printf.
func Printf(format string, args ...interface{}) {
	if !quiet {
		console.Printf(format, args...)
	}
}

// Init records every plausible GOPATH/GOROOT src prefix so stack traces
// in fatal logs are printed relative to the module, not the build
// machine's filesystem layout.
func Init(goPath string) {
	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}

	trimStrings = []string{filepath.Join(runtime.GOROOT(), "src") + string(filepath.Separator)}
	for _, p := range strings.Split(goPath, sep) {
		if p == "" {
			continue
		}
		trimStrings = append(trimStrings, filepath.Join(p, "src")+string(filepath.Separator))
	}
	for _, p := range strings.Split(build.Default.GOPATH, sep) {
		if p == "" {
			continue
		}
		trimStrings = append(trimStrings, filepath.Join(p, "src")+string(filepath.Separator))
	}
	trimStrings = append(trimStrings, filepath.Join("github.com", "snaparray", "scrubcore")+string(filepath.Separator))
}

func trimTrace(f string) string {
	for _, prefix := range trimStrings {
		f = strings.TrimPrefix(filepath.ToSlash(f), filepath.ToSlash(prefix))
	}
	return filepath.FromSlash(f)
}

func getTrace(skip int) []string {
	var trace []string
	pc, file, line, ok := runtime.Caller(skip)
	for ok {
		file = trimTrace(file)
		_, funcName := filepath.Split(runtime.FuncForPC(pc).Name())
		if !strings.HasPrefix(file, "<autogenerated>") && !strings.HasPrefix(funcName, "runtime.") {
			trace = append(trace, fmt.Sprintf("%s:%d:%s()", file, line, funcName))
			for _, name := range matchingFuncNames {
				if funcName == name {
					return trace
				}
			}
		}
		skip++
		pc, file, line, ok = runtime.Caller(skip)
	}
	return trace
}

// FatalIf logs err with a stack trace and exits the process with status
// 1. It is a no-op if err is nil. Used for setup errors (empty array,
// parity open failure) and the unexpected close-failure path.
func FatalIf(err error, msg string, data ...interface{}) {
	if err == nil {
		return
	}
	logWithTrace(Fatal, goerrors.Wrap(err, 1), fmt.Sprintf(msg, data...))
	os.Exit(1)
}

// LogIf logs err with a stack trace without exiting. It is a no-op if
// err is nil.
func LogIf(err error, msg string, data ...interface{}) {
	if err == nil {
		return
	}
	logWithTrace(Error, err, fmt.Sprintf(msg, data...))
}

func logWithTrace(level Level, err error, message string) {
	cause := err.Error()
	if wrapped, ok := err.(*goerrors.Error); ok {
		cause = wrapped.ErrorStack()
	}
	trace := getTrace(3)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if jsonFlag {
		out, merr := json.Marshal(struct {
			Level string `json:"level"`
			Time  string `json:"time"`
			Cause string `json:"cause"`
			Trace string `json:"trace,omitempty"`
		}{level.String(), now, cause, strings.Join(trace, " <- ")})
		if merr != nil {
			panic("logger: marshal failed: " + merr.Error())
		}
		fmt.Println(string(out))
		return
	}

	line := fmt.Sprintf("[%s] [%s] %s (%s)", now, level.String(), message, cause)
	fmt.Println(colorRed(colorBold(line)))
	if len(trace) > 0 {
		fmt.Println("Trace: " + strings.Join(trace, "\n       "))
	}
}

// Default implements scrub.Logger on top of this package's free
// functions, so cmd/scrubd can pass logger.Default{} straight into
// scrub.Config without scrub importing this package.
type Default struct{}

// BlockError implements scrub.Logger.
func (Default) BlockError(index int64, source, path, kind string) {
	BlockError(index, source, path, kind)
}

// Fatalf implements scrub.Logger. It logs at fatal severity but does
// not exit the process: per spec.md §6, mapping a failed run to a
// nonzero exit status is the enclosing binary's responsibility, not the
// core's. cmd/scrubd calls FatalIf itself once Run has returned.
func (Default) Fatalf(format string, args ...interface{}) {
	logWithTrace(Fatal, goerrors.Wrap(fmt.Errorf(format, args...), 1), "scrub: unexpected error")
}

// BlockError emits the spec's wire-format error line for one distinct
// block-level failure: "error:<i>:<source>:<path>: <kind>". source is
// one of a disk name, "parity", or "qarity"; kind is one of "Open
// error", "Read error", "Data error".
func BlockError(index int64, source, path, kind string) {
	line := fmt.Sprintf("error:%d:%s:%s: %s", index, source, path, kind)
	if jsonFlag {
		out, err := json.Marshal(blockErrorLine{
			Level:  Error.String(),
			Time:   time.Now().UTC().Format(traceTimeFormat),
			Index:  index,
			Source: source,
			Path:   path,
			Kind:   kind,
		})
		if err != nil {
			panic("logger: marshal failed: " + err.Error())
		}
		fmt.Println(string(out))
		return
	}
	fmt.Println(colorRed(line))
}
