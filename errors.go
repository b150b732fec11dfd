package rsgview

import (
	"errors"
	"io"
	"net"
)

// Scene-graph ingestion errors.
var (
	ErrMalformedExpression = errors.New("rsgview: malformed s-expression")
	ErrMalformedHeader     = errors.New("rsgview: malformed scene graph header")
	ErrDiffWithoutFull     = errors.New("rsgview: diff update without a full scene graph")
	ErrUnknownNodeType     = errors.New("rsgview: unknown node type")
	ErrUnknownOperation    = errors.New("rsgview: unknown node operation")
	ErrStructuralMismatch  = errors.New("rsgview: diff does not match scene graph structure")
)

// Draw protocol errors.
var (
	ErrTruncatedMessage       = errors.New("rsgview: truncated message")
	ErrUnknownCommandCategory = errors.New("rsgview: unknown draw command category")
	ErrUnknownCommandSubtype  = errors.New("rsgview: unknown draw command subtype")
	ErrUnresolvedAgent        = errors.New("rsgview: unresolved agent reference")
	ErrSocketBind             = errors.New("rsgview: cannot bind draw socket")
	ErrValueOutOfRange        = errors.New("rsgview: value cannot be encoded in a draw packet")
)

// isExpectedCloseError reports whether err is the normal result of a
// connection or socket being closed, by either side.
func isExpectedCloseError(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
