package evcap

import (
	"bytes"
	"os"
	"runtime"
	"strings"

	"github.com/go-stack/stack"
	"github.com/oklog/ulid/v2"
)

// NewEventFromCapture is the adapter-facing constructor: it assembles an
// event from the raw values an instrumentation layer extracts from a trace
// or log statement. Zero-value location arguments mean "unknown".
func NewEventFromCapture(message string, level Level, target string, file string, line int, modulePath string, fields map[string]string) *Event {
	data := NewEventData(message, level, target)
	data.File = file
	data.Line = line
	data.ModulePath = modulePath
	data.Fields = fields
	return NewEvent(data)
}

// CaptureEvent constructs an event at the call site, augmented with the
// ambient context an adapter would normally supply: source location, the
// calling goroutine's ID as the thread ID, the process ID, and a generated
// correlation ID.
func CaptureEvent(message string, level Level, target string) *Event {
	file, line, modulePath := callerInfo(1)
	ev := NewEventFromCapture(message, level, target, file, line, modulePath, nil)
	return ev.
		WithThread(goroutineID(), "").
		WithProcessID(os.Getpid()).
		WithCorrelationID(NewCorrelationID())
}

// NewCorrelationID returns a fresh correlation ID. IDs are ULIDs, using a
// default monotonic source of entropy, prefixed for greppability.
func NewCorrelationID() string {
	return "corr-" + ulid.MustNew(ulid.Now(), correlationEntropy).String()
}

var correlationEntropy = ulid.DefaultEntropy()

//
//
//

// callerInfo returns the file, line, and package path of the caller, skipping
// the given number of additional frames above the caller of callerInfo.
func callerInfo(skip int) (file string, line int, modulePath string) {
	c := stack.Caller(skip + 1)
	fr := c.Frame()
	return pathSuffix(fr.File), fr.Line, pkgPrefix(fr.Function)
}

// pkgPrefix returns the full package path of a runtime function name like
// "example.com/app/db.(*Pool).Query": everything before the first dot that
// follows the final path separator.
func pkgPrefix(funcName string) string {
	const pathSep = "/"
	end := strings.LastIndex(funcName, pathSep)
	if end == -1 {
		return ""
	}
	dot := strings.Index(funcName[end:], ".")
	if dot == -1 {
		return funcName
	}
	return funcName[:end+dot]
}

func pathSuffix(path string) string {
	const pathSep = "/"
	lastSep := strings.LastIndex(path, pathSep)
	if lastSep == -1 {
		return path
	}
	return path[strings.LastIndex(path[:lastSep], pathSep)+1:]
}

// goroutineID parses the current goroutine's ID from a stack header, which is
// the only portable way to get it. It's used as diagnostic context only,
// never as a key for program logic.
func goroutineID() string {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]

	// The header looks like "goroutine 123 [running]:".
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i > 0 {
		return string(buf[:i])
	}
	return ""
}
