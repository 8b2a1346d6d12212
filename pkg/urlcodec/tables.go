package urlcodec

// URNUUIDPrefix is the scheme whose tail is carried as a raw 128-bit UUID
// instead of a character stream.
const URNUUIDPrefix = "urn:uuid:"

// Scheme maps a one-byte scheme code to a URI prefix.
type Scheme struct {
	Code   byte
	Prefix string
}

// Expansion maps a one-byte expansion code to a URL fragment.
type Expansion struct {
	Code byte
	Text string
}

// DefaultSchemes is the scheme table of the broadcast format. Entries are
// scanned in order, so "http://www." must come before "http://".
var DefaultSchemes = []Scheme{ //nolint: gochecknoglobals
	{Code: 0x00, Prefix: "http://www."},
	{Code: 0x01, Prefix: "https://www."},
	{Code: 0x02, Prefix: "http://"},
	{Code: 0x03, Prefix: "https://"},
	{Code: 0x04, Prefix: URNUUIDPrefix},
}

// DefaultExpansions is the expansion table for the http and https schemes,
// restricted to generic top-level domains.
var DefaultExpansions = []Expansion{ //nolint: gochecknoglobals
	{Code: 0x00, Text: ".com/"},
	{Code: 0x01, Text: ".org/"},
	{Code: 0x02, Text: ".edu/"},
	{Code: 0x03, Text: ".net/"},
	{Code: 0x04, Text: ".info/"},
	{Code: 0x05, Text: ".biz/"},
	{Code: 0x06, Text: ".gov/"},
	{Code: 0x07, Text: ".com"},
	{Code: 0x08, Text: ".org"},
	{Code: 0x09, Text: ".edu"},
	{Code: 0x0a, Text: ".net"},
	{Code: 0x0b, Text: ".info"},
	{Code: 0x0c, Text: ".biz"},
	{Code: 0x0d, Text: ".gov"},
}

// hasPrefixFold reports whether s starts with prefix, ignoring ASCII case only.
// Non-ASCII bytes must match exactly, so the matched length in s is always
// len(prefix).
func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if lowerASCII(s[i]) != lowerASCII(prefix[i]) {
			return false
		}
	}

	return true
}

func lowerASCII(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}

	return b
}

func lowerASCIIString(s string) string {
	b := []byte(s)
	for i := range b {
		b[i] = lowerASCII(b[i])
	}

	return string(b)
}
