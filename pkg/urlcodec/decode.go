package urlcodec

import (
	"strings"
	"uribeacon/pkg/serrors"

	"github.com/google/uuid"
)

// TokenKind tells what a run of payload bytes stands for.
type TokenKind string

const (
	TokenScheme    TokenKind = "scheme"
	TokenExpansion TokenKind = "expansion"
	TokenLiteral   TokenKind = "literal"
	TokenUUID      TokenKind = "uuid"
)

// Token is one decoded unit of a payload.
type Token struct {
	// Offset is the index of Raw[0] within the payload.
	Offset int
	Raw    []byte
	Kind   TokenKind
	// Text is the string Raw decodes to.
	Text string
}

// Decode reconstructs the URI carried by payload.
func (c *Codec) Decode(payload []byte) (string, error) {
	tokens, err := c.Tokenize(payload)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(payload) * 2)
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}

	return sb.String(), nil
}

// Tokenize splits payload into the scheme, expansion, literal and UUID units
// it is made of, in payload order.
func (c *Codec) Tokenize(payload []byte) ([]Token, error) {
	if len(payload) == 0 {
		return nil, serrors.KindOnly(ErrEmpty)
	}

	scheme, ok := c.schemeByCode[payload[0]]
	if !ok {
		return nil, serrors.With(ErrUnknownScheme, "unknown scheme code 0x%02x", payload[0])
	}

	tokens := make([]Token, 0, len(payload))
	tokens = append(tokens, Token{Offset: 0, Raw: payload[:1], Kind: TokenScheme, Text: scheme.Prefix})
	rest := payload[1:]

	if isUUIDScheme(scheme) {
		if len(rest) != len(uuid.UUID{}) {
			return nil, serrors.With(ErrInvalidLength, "uuid payload carries %d bytes, want %d",
				len(rest), len(uuid.UUID{}))
		}
		id, err := uuid.FromBytes(rest)
		if err != nil {
			return nil, serrors.Wrap(ErrInvalidLength, err, "could not read UUID")
		}

		return append(tokens, Token{Offset: 1, Raw: rest, Kind: TokenUUID, Text: id.String()}), nil
	}

	for i, b := range rest {
		t := Token{Offset: i + 1, Raw: rest[i : i+1]}
		if e, ok := c.expansionByCode[b]; ok {
			t.Kind, t.Text = TokenExpansion, e.Text
		} else {
			t.Kind, t.Text = TokenLiteral, string(rest[i:i+1])
		}
		tokens = append(tokens, t)
	}

	return tokens, nil
}
