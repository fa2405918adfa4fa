package infra

import (
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

// References:
// https://github.com/pkg/errors/blob/master/stack.go

type Frame uintptr

func (frame Frame) pc() uintptr {
	return uintptr(frame) - 1
}

func (frame Frame) file() string {
	pc := frame.pc()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknownFile"
	}
	f, _ := fn.FileLine(pc)
	return f
}

func (frame Frame) line() int {
	pc := frame.pc()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return 0
	}
	_, l := fn.FileLine(pc)
	return l
}

func (frame Frame) name() string {
	pc := frame.pc()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknownFunc"
	}
	return fn.Name()
}

// Format characters:
// %s - source file
// %d - source line
// %n - function name
// %v - verbose, equivalent to %s:%d
// %+s - full path, the root path is relative to the compile time GOPATH
// separated by \n\t (<function-name>\n\t<path>)
// %+v - equivalent to %+s:%d
func (frame Frame) Format(s fmt.State, verb rune) {
	switch verb {
	case 's':
		if s.Flag('+') {
			_, _ = io.WriteString(s, frame.name())
			_, _ = io.WriteString(s, "\n\t")
			_, _ = io.WriteString(s, frame.file())
		} else {
			_, _ = io.WriteString(s, path.Base(frame.file()))
		}
	case 'd':
		_, _ = io.WriteString(s, strconv.Itoa(frame.line()))
	case 'n':
		_, _ = io.WriteString(s, funcName(frame.name()))
	case 'v':
		frame.Format(s, 's')
		_, _ = io.WriteString(s, ":")
		frame.Format(s, 'd')
	}
}

// For fmt.Sprintf("%+v", frame).
// If json.Marshaler interface isn't implemented, the MarshalText method is used.
func (frame Frame) MarshalText() ([]byte, error) {
	name := frame.name()
	if name == "unknownFunc" {
		return []byte("unknownFrame"), nil
	}
	builder := strings.Builder{}
	_, _ = builder.WriteString(name)
	_, _ = builder.WriteString(" ")
	_, _ = builder.WriteString(frame.file())
	_, _ = builder.WriteString(":")
	_, _ = builder.WriteString(strconv.Itoa(frame.line()))
	return []byte(builder.String()), nil
}

func (frame Frame) MarshalJSON() ([]byte, error) {
	name := frame.name()
	if name == "unknownFunc" {
		return []byte("{\"frame\":\"unknownFrame\"}"), nil
	}
	builder := strings.Builder{}
	_, _ = builder.WriteString("{")
	_, _ = builder.WriteString("\"func\":\"")
	_, _ = builder.WriteString(name)
	_, _ = builder.WriteString("\",")
	_, _ = builder.WriteString("\"fileAndLine\":\"")
	_, _ = builder.WriteString(frame.file())
	_, _ = builder.WriteString(":")
	_, _ = builder.WriteString(strconv.Itoa(frame.line()))
	_, _ = builder.WriteString("\"}")
	return []byte(builder.String()), nil
}

func funcName(name string) string {
	i := strings.LastIndex(name, "/")
	name = name[i+1:]
	i = strings.Index(name, ".")
	return name[i+1:]
}

// stack captures the call stack at the point it is created, skipping
// the frames belonging to the error-stack machinery itself.
type stack []Frame

func callers() stack {
	const maxDepth = 32
	const skip = 3
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	st := make(stack, n)
	for i := 0; i < n; i++ {
		st[i] = Frame(pcs[i])
	}
	return st
}

// ErrorStack is an error that carries the call stack of where it was
// created. zap.Inline(es) lets a logger emit the stack as structured
// fields instead of a free-form string.
type ErrorStack interface {
	error
	zapcore.ObjectMarshaler
	Stack() []Frame
}

type errorStack struct {
	msg   string
	cause error
	st    stack
}

func (e *errorStack) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *errorStack) Unwrap() error {
	return e.cause
}

func (e *errorStack) Stack() []Frame {
	return e.st
}

func (e *errorStack) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("error", e.Error())
	return enc.AddArray("stack", e)
}

func (e *errorStack) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, f := range e.st {
		enc.AppendString(fmt.Sprintf("%+v", f))
	}
	return nil
}

// NewErrorStack builds an ErrorStack from a message, capturing the
// caller's stack at this point.
func NewErrorStack(msg string) ErrorStack {
	return &errorStack{msg: msg, st: callers()}
}

// WrapErrorStack wraps an existing error with a message and a freshly
// captured stack, preserving the original via Unwrap.
func WrapErrorStack(cause error, msg string) ErrorStack {
	if cause == nil {
		return NewErrorStack(msg)
	}
	return &errorStack{msg: msg, cause: cause, st: callers()}
}
