package poet

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Propfend/poet/internal"
	"gopkg.in/yaml.v3"
)

// Argument declares one prompt argument in front matter
type Argument struct {
	Date        DateText `toml:"date" yaml:"date" json:"date,omitempty"`
	Description string   `toml:"description" yaml:"description" json:"description,omitempty"`
	Required    bool     `toml:"required" yaml:"required" json:"required"`
	Title       string   `toml:"title" yaml:"title" json:"title,omitempty"`
}

// DateText is a free-form date. Native TOML dates are kept as text, in
// 2006-01-02 form when they carry no time of day.
type DateText string

// UnmarshalTOML implements toml.Unmarshaler
func (d *DateText) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case string:
		*d = DateText(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			*d = DateText(t.Format(time.DateOnly))
		} else {
			*d = DateText(t.Format(time.RFC3339))
		}
	default:
		return NewUnsupportedValueError(v)
	}
	return nil
}

// FrontMatter is the metadata block at the top of a prompt document
type FrontMatter struct {
	Arguments   map[string]Argument `toml:"arguments" yaml:"arguments" json:"arguments,omitempty"`
	Date        DateText            `toml:"date" yaml:"date" json:"date,omitempty"`
	Description string              `toml:"description" yaml:"description" json:"description,omitempty"`
	Layout      string              `toml:"layout" yaml:"layout" json:"layout,omitempty"`
	Props       map[string]any      `toml:"props" yaml:"props" json:"props,omitempty"`
	Render      *bool               `toml:"render" yaml:"render" json:"render,omitempty"`
	Title       string              `toml:"title" yaml:"title" json:"title"`
}

// ShouldRender reports whether the document is served. Defaults to true.
func (fm FrontMatter) ShouldRender() bool {
	return fm.Render == nil || *fm.Render
}

// Value returns the front matter as seen by expressions and components
// under context.front_matter
func (fm FrontMatter) Value() (Value, error) {
	props, err := FromAny(fm.Props)
	if err != nil {
		return NilValue(), err
	}
	if props.IsNil() {
		props = MapValue(nil)
	}
	return MapValue(NewMap().
		Set(ContextKeyTitle, StringValue(fm.Title)).
		Set(ContextKeyDescription, StringValue(fm.Description)).
		Set(ContextKeyDate, StringValue(string(fm.Date))).
		Set(ContextKeyLayout, StringValue(fm.Layout)).
		Set(ContextKeyProps, props)), nil
}

// ParseFrontMatter decodes a raw front matter block. Unknown fields and a
// missing title are errors.
func ParseFrontMatter(format internal.FrontMatterFormat, raw string) (FrontMatter, error) {
	var fm FrontMatter
	var err error
	switch format {
	case internal.FrontMatterYAML:
		err = decodeYAMLFrontMatter(raw, &fm)
	default:
		err = decodeTOMLFrontMatter(raw, &fm)
	}
	if err != nil {
		return FrontMatter{}, err
	}

	if strings.TrimSpace(fm.Title) == "" {
		return FrontMatter{}, NewParseMetadataError(ErrMsgFrontMatterMissingTitle, nil)
	}
	return fm, nil
}

func decodeTOMLFrontMatter(raw string, fm *FrontMatter) error {
	md, err := toml.Decode(raw, fm)
	if err != nil {
		return NewParseMetadataError(ErrMsgFrontMatterInvalid, err)
	}

	undecoded := md.Undecoded()
	if len(undecoded) > 0 {
		fields := make([]string, len(undecoded))
		for i, key := range undecoded {
			fields[i] = key.String()
		}
		return NewUnknownFieldError(fields)
	}
	return nil
}

func decodeYAMLFrontMatter(raw string, fm *FrontMatter) error {
	dec := yaml.NewDecoder(strings.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(fm); err != nil && !errors.Is(err, io.EOF) {
		return NewParseMetadataError(ErrMsgFrontMatterInvalid, err)
	}
	return nil
}
