package internal

import (
	"fmt"
	"strings"
)

// FrontMatterFormat identifies the front matter syntax
type FrontMatterFormat int

// Front matter formats, selected by the opening delimiter
const (
	FrontMatterTOML FrontMatterFormat = iota // +++
	FrontMatterYAML                          // ---
)

// String returns the format name
func (f FrontMatterFormat) String() string {
	if f == FrontMatterYAML {
		return "yaml"
	}
	return "toml"
}

// FrontMatterBlock is a document split into its raw front matter and body
type FrontMatterBlock struct {
	Format   FrontMatterFormat
	Raw      string
	Body     string
	BodyLine int // document line number of the first body line
}

// SplitFrontMatter separates the front matter from the body. The document
// must start with a +++ or --- line (after an optional BOM and leading blank
// lines) and the same delimiter must close it on a line of its own.
func SplitFrontMatter(source string) (*FrontMatterBlock, error) {
	source = strings.TrimPrefix(source, StrByteOrderMark)

	lines := strings.SplitAfter(source, string(CharNewline))
	first := 0
	for first < len(lines) && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	if first == len(lines) {
		return nil, NewFrontMatterError(ErrMsgFrontMatterMissing, 1)
	}

	delimiter := strings.TrimSpace(lines[first])
	var format FrontMatterFormat
	switch delimiter {
	case StrFrontMatterTOML:
		format = FrontMatterTOML
	case StrFrontMatterYAML:
		format = FrontMatterYAML
	default:
		return nil, NewFrontMatterError(ErrMsgFrontMatterMissing, first+1)
	}

	size := 0
	for i := first + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delimiter {
			return &FrontMatterBlock{
				Format:   format,
				Raw:      strings.Join(lines[first+1:i], ""),
				Body:     strings.Join(lines[i+1:], ""),
				BodyLine: i + 2,
			}, nil
		}
		size += len(lines[i])
		if size > DefaultMaxFrontMatterSize {
			return nil, NewFrontMatterError(ErrMsgFrontMatterTooLarge, first+1)
		}
	}

	return nil, NewFrontMatterError(ErrMsgFrontMatterUnterminated, first+1)
}

// FrontMatterError reports a front matter framing problem at a line
type FrontMatterError struct {
	Message string
	Line    int
}

// NewFrontMatterError creates a new front matter error
func NewFrontMatterError(message string, line int) *FrontMatterError {
	return &FrontMatterError{Message: message, Line: line}
}

// Error implements the error interface
func (e *FrontMatterError) Error() string {
	return fmt.Sprintf(ErrFmtAtLine, e.Message, e.Line)
}
