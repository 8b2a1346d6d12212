package urlcodec

import (
	"uribeacon/pkg/serrors"

	"github.com/google/uuid"
)

// canonicalUUIDLen is the length of the 8-4-4-4-12 textual UUID form.
const canonicalUUIDLen = 36

// Encode compresses uri into a payload. The scheme is matched ignoring ASCII
// case; everything after it keeps its original bytes unless an expansion
// replaces it.
func (c *Codec) Encode(uri string) ([]byte, error) {
	if uri == "" {
		return nil, serrors.KindOnly(ErrEmpty)
	}

	scheme, ok := c.matchScheme(uri)
	if !ok {
		return nil, serrors.With(ErrUnknownScheme, "no known scheme prefixes %q", uri)
	}

	out := make([]byte, 0, len(uri))
	out = append(out, scheme.Code)
	rest := uri[len(scheme.Prefix):]

	if isUUIDScheme(scheme) {
		return appendUUID(out, rest)
	}

	for pos := 0; pos < len(rest); {
		if e, ok := c.longestExpansion(rest[pos:]); ok {
			out = append(out, e.Code)
			pos += len(e.Text)

			continue
		}
		out = append(out, rest[pos])
		pos++
	}

	return out, nil
}

func appendUUID(out []byte, s string) ([]byte, error) {
	// uuid.Parse also takes braced, urn-prefixed and unhyphenated forms
	if len(s) != canonicalUUIDLen {
		return nil, serrors.With(ErrMalformedUUID, "%q is not a canonical UUID", s)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, serrors.Wrap(ErrMalformedUUID, err, "could not parse UUID %q", s)
	}

	return append(out, id[:]...), nil
}
