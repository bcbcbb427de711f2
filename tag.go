package refine

import (
	"fmt"
	"strings"
)

// TagKind names a category of field-level processing, e.g. "no-digits".
type TagKind string

// TagDescriptor is one declared tag on a field: its kind, optional argument
// and optional message template. Descriptors are values; the With methods
// return modified copies.
type TagDescriptor struct {
	Kind    TagKind
	Arg     string // Kind-specific parameter, e.g. the forbidden characters
	Message string // Overrides the validator's default message when set
}

// Tag returns a descriptor for kind with no argument.
func Tag(kind TagKind) TagDescriptor {
	return TagDescriptor{Kind: kind}
}

// WithArg returns a copy of d carrying arg.
func (d TagDescriptor) WithArg(arg string) TagDescriptor {
	d.Arg = arg
	return d
}

// WithMessage returns a copy of d carrying a message template.
// The template may reference {field}, {tag}, {arg} and {detail}.
func (d TagDescriptor) WithMessage(msg string) TagDescriptor {
	d.Message = msg
	return d
}

func (d TagDescriptor) String() string {
	if d.Arg == "" {
		return string(d.Kind)
	}
	return string(d.Kind) + "=" + d.Arg
}

// render expands a message template for a failure on field.
func (d TagDescriptor) render(template, field, detail string) string {
	if d.Message != "" {
		template = d.Message
	}
	if template == "" {
		template = "failed {tag}"
	}
	return strings.NewReplacer(
		"{field}", field,
		"{tag}", string(d.Kind),
		"{arg}", d.Arg,
		"{detail}", detail,
	).Replace(template)
}

// ParseTags parses a refine struct tag value into ordered descriptors.
//
//	"trim,normalize-name,no-digits=0123456789"
//
// Empty elements are ignored. Each element splits on its first "=".
func ParseTags(value string) ([]TagDescriptor, error) {
	var tags []TagDescriptor
	for _, elem := range strings.Split(value, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		kind, arg, _ := strings.Cut(elem, "=")
		kind = strings.TrimSpace(kind)
		if kind == "" {
			return nil, fmt.Errorf("%w: missing kind in %q", ErrInvalidTag, elem)
		}
		tags = append(tags, TagDescriptor{Kind: TagKind(kind), Arg: arg})
	}
	return tags, nil
}
