package msd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// Error kinds. Every error returned by Parse or Eval matches exactly one of
// these with errors.Is.
var (
	ErrBadInput        = errors.New("bad input")
	ErrInvalidInput    = errors.New("invalid input")
	ErrIntegerOverflow = errors.New("int overflow")
	ErrUnboundVariable = errors.New("free variable")
	ErrInvalidOperand  = errors.New("invalid operand")
)

// SourceLocation represents a location in source code
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Length   int // Length of the syntax node that caused the error
}

func (loc *SourceLocation) String() string {
	if loc.Filename == "" {
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	}
	return fmt.Sprintf("%s:%d:%d", loc.Filename, loc.Line, loc.Column)
}

type SourceLocatable interface {
	GetSourceLocation() *SourceLocation
}

// ParseError is returned by the parser. Kind is one of ErrBadInput,
// ErrInvalidInput or ErrIntegerOverflow.
type ParseError struct {
	Kind     error
	Location *SourceLocation
	Detail   string

	// Incomplete is set when the input ended where more was required, so
	// appending to it could still yield a valid expression.
	Incomplete bool
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Location == nil {
		return msg
	}
	return e.Location.String() + ": " + msg
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// IsIncomplete reports whether err is a parse error caused by the input
// ending too early.
func IsIncomplete(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr) && parseErr.Incomplete
}

// UnboundVariableError is returned when a variable has no binding in the
// environment.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return "free variable: " + e.Name
}

func (e *UnboundVariableError) Unwrap() error {
	return ErrUnboundVariable
}

// InvalidOperandError is returned when a value is used with an operation it
// does not support, e.g. adding a boolean or calling a number.
type InvalidOperandError struct {
	Op      string
	Operand Value
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid operand for %s: %s", e.Op, e.Operand)
}

func (e *InvalidOperandError) Unwrap() error {
	return ErrInvalidOperand
}

// SourceError represents an error with source location information
type SourceError struct {
	Inner    error
	Location *SourceLocation
	Source   string
}

func NewSourceError(inner error, location *SourceLocation, source string) *SourceError {
	return &SourceError{
		Inner:    inner,
		Location: location,
		Source:   source,
	}
}

func (e *SourceError) Unwrap() error {
	return e.Inner
}

func (e *SourceError) Error() string {
	if e.Location == nil {
		return e.Inner.Error()
	}
	return e.FormatWithHighlighting()
}

var (
	errorHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	gutterStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Faint(true)
	caretStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// FormatWithHighlighting renders the error followed by the offending source
// line with a caret under the failing expression.
func (e *SourceError) FormatWithHighlighting() string {
	lines := strings.Split(e.Source, "\n")
	if e.Location.Line < 1 || e.Location.Line > len(lines) {
		return e.Inner.Error()
	}

	var result strings.Builder
	result.WriteString(errorHeaderStyle.Render("Error:") + " " + e.Inner.Error() + "\n")
	result.WriteString(gutterStyle.Render("  --> "+e.Location.String()) + "\n")

	lineNo := fmt.Sprintf("%3d", e.Location.Line)
	result.WriteString(gutterStyle.Render(" "+lineNo+" |") + " " + lines[e.Location.Line-1] + "\n")

	padding := strings.Repeat(" ", 1+len(lineNo)+3+e.Location.Column-1)
	underline := strings.Repeat("^", max(1, e.Location.Length))
	result.WriteString(padding + caretStyle.Render(underline))

	return result.String()
}

// EvalContext carries the source being evaluated so that evaluation errors
// can point back into it.
type EvalContext struct {
	Filename string
	Source   string
}

func NewEvalContext(filename, source string) *EvalContext {
	return &EvalContext{
		Filename: filename,
		Source:   source,
	}
}

type evalContextKey struct{}

// WithEvalContext stores the EvalContext in the Go context
func WithEvalContext(ctx context.Context, evalCtx *EvalContext) context.Context {
	return context.WithValue(ctx, evalContextKey{}, evalCtx)
}

// GetEvalContext retrieves the EvalContext from the Go context
func GetEvalContext(ctx context.Context) *EvalContext {
	if evalCtx, ok := ctx.Value(evalContextKey{}).(*EvalContext); ok {
		return evalCtx
	}
	return nil
}

// CreateSourceError attaches the node's location to err, unless err already
// carries one. Locations without a filename take the context's.
func (ctx *EvalContext) CreateSourceError(err error, node SourceLocatable) error {
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return sourceErr
	}
	location := node.GetSourceLocation()
	if location == nil {
		return err
	}
	if location.Filename == "" && ctx.Filename != "" {
		loc := *location
		loc.Filename = ctx.Filename
		location = &loc
	}
	return NewSourceError(err, location, ctx.Source)
}

// WithEvalErrorHandling wraps an Eval implementation so that the first node
// to fail decorates the error with its source location.
func WithEvalErrorHandling(ctx context.Context, node SourceLocatable, fn func() (Value, error)) (Value, error) {
	val, err := fn()
	if err != nil {
		evalCtx := GetEvalContext(ctx)
		if evalCtx == nil {
			return nil, err
		}
		return nil, evalCtx.CreateSourceError(err, node)
	}
	return val, nil
}
