package quill

import "errors"

// Sentinel errors classifying fatal build failures. They are always wrapped
// with the id of the offending content unit (and term/layout name where one
// applies) at the call site.
var (
	// ErrMalformedFrontMatter indicates a content unit does not open with a
	// well-formed, delimited front-matter block.
	ErrMalformedFrontMatter = errors.New("malformed front matter")

	// ErrInvalidField indicates a known front-matter key holds a value that
	// cannot be parsed, in a context where the key is required.
	ErrInvalidField = errors.New("invalid front matter field")

	// ErrUnterminatedCodeBlock indicates a fenced code block was opened but
	// never closed before the end of the body.
	ErrUnterminatedCodeBlock = errors.New("unterminated code block")

	// ErrAmbiguousPermalink indicates two distinct content units resolved to
	// the same public path.
	ErrAmbiguousPermalink = errors.New("ambiguous permalink")

	// ErrUnknownLayout indicates a content unit or layout names a layout
	// that is not registered.
	ErrUnknownLayout = errors.New("unknown layout")

	// ErrLayoutCycle indicates a layout parent chain revisits a layout.
	ErrLayoutCycle = errors.New("layout cycle")
)
