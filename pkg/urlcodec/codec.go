// Package urlcodec implements the compressed URL encoding used by URI and
// Eddystone-URL beacons.
//
// An encoded payload is one scheme byte followed either by the 16 bytes of a
// UUID (urn:uuid: scheme) or by a stream of literal bytes and expansion codes,
// where each expansion code stands for a common suffix such as ".com/". There
// is no length prefix; the frame carrying the payload defines its end.
//
// Expansion codes and literal bytes share the same byte range. Literal URL
// characters are printable ASCII, so they never collide with the expansion
// codes, but a control byte in the input would decode as an expansion.
package urlcodec

import (
	"strings"
	"uribeacon/pkg/serrors"
)

// Codec encodes and decodes payloads with a fixed pair of tables. A Codec is
// immutable once built and safe for concurrent use.
type Codec struct {
	schemes    []Scheme
	expansions []Expansion

	schemeByCode    map[byte]Scheme
	expansionByCode map[byte]Expansion
}

// New validates the tables and returns a Codec using them. Validation
// failures are returned with kind ErrConfig.
func New(schemes []Scheme, expansions []Expansion) (*Codec, error) {
	c := &Codec{
		schemes:         append([]Scheme(nil), schemes...),
		expansions:      append([]Expansion(nil), expansions...),
		schemeByCode:    make(map[byte]Scheme, len(schemes)),
		expansionByCode: make(map[byte]Expansion, len(expansions)),
	}

	if len(c.schemes) == 0 {
		return nil, serrors.With(ErrConfig, "scheme table is empty")
	}

	uuidSchemes := 0
	for i, s := range c.schemes {
		if s.Prefix == "" {
			return nil, serrors.With(ErrConfig, "scheme code %d has an empty prefix", s.Code)
		}
		if _, ok := c.schemeByCode[s.Code]; ok {
			return nil, serrors.With(ErrConfig, "duplicate scheme code %d", s.Code)
		}
		if lowerASCIIString(s.Prefix) == URNUUIDPrefix {
			uuidSchemes++
		}
		// an earlier prefix of a later entry would always win the scan
		for _, earlier := range c.schemes[:i] {
			if hasPrefixFold(s.Prefix, earlier.Prefix) {
				return nil, serrors.With(ErrConfig, "scheme %q (code %d) is shadowed by %q (code %d)",
					s.Prefix, s.Code, earlier.Prefix, earlier.Code)
			}
		}
		c.schemeByCode[s.Code] = s
	}
	if uuidSchemes > 1 {
		return nil, serrors.With(ErrConfig, "more than one %q scheme", URNUUIDPrefix)
	}

	texts := make(map[string]byte, len(c.expansions))
	for _, e := range c.expansions {
		if e.Text == "" {
			return nil, serrors.With(ErrConfig, "expansion code %d has empty text", e.Code)
		}
		if e.Code >= 0x20 && e.Code <= 0x7e {
			return nil, serrors.With(ErrConfig, "expansion code 0x%02x collides with printable ASCII", e.Code)
		}
		if _, ok := c.expansionByCode[e.Code]; ok {
			return nil, serrors.With(ErrConfig, "duplicate expansion code %d", e.Code)
		}
		if other, ok := texts[e.Text]; ok {
			return nil, serrors.With(ErrConfig, "expansion %q used by codes %d and %d", e.Text, other, e.Code)
		}
		texts[e.Text] = e.Code
		c.expansionByCode[e.Code] = e
	}

	return c, nil
}

// MustNew is like New but panics when the tables are invalid. It is meant for
// package-level codecs built from constant tables.
func MustNew(schemes []Scheme, expansions []Expansion) *Codec {
	c, err := New(schemes, expansions)
	if err != nil {
		panic("urlcodec: " + err.Error())
	}

	return c
}

// Default is the codec for the standard broadcast format tables.
var Default = MustNew(DefaultSchemes, DefaultExpansions) //nolint: gochecknoglobals

// Encode encodes uri with the Default codec.
func Encode(uri string) ([]byte, error) { return Default.Encode(uri) }

// Decode decodes payload with the Default codec.
func Decode(payload []byte) (string, error) { return Default.Decode(payload) }

// Schemes returns a copy of the codec's scheme table.
func (c *Codec) Schemes() []Scheme { return append([]Scheme(nil), c.schemes...) }

// Expansions returns a copy of the codec's expansion table.
func (c *Codec) Expansions() []Expansion { return append([]Expansion(nil), c.expansions...) }

// matchScheme returns the first scheme, in table order, that prefixes uri.
func (c *Codec) matchScheme(uri string) (Scheme, bool) {
	for _, s := range c.schemes {
		if hasPrefixFold(uri, s.Prefix) {
			return s, true
		}
	}

	return Scheme{}, false
}

// longestExpansion returns the expansion with the longest text that prefixes
// rest. Equal lengths resolve to the smaller code.
func (c *Codec) longestExpansion(rest string) (Expansion, bool) {
	var (
		best  Expansion
		found bool
	)
	for _, e := range c.expansions {
		if !strings.HasPrefix(rest, e.Text) {
			continue
		}
		if !found || len(e.Text) > len(best.Text) || (len(e.Text) == len(best.Text) && e.Code < best.Code) {
			best, found = e, true
		}
	}

	return best, found
}

func isUUIDScheme(s Scheme) bool {
	return lowerASCIIString(s.Prefix) == URNUUIDPrefix
}
