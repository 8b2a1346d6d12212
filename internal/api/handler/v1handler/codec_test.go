package v1handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"uribeacon/internal/api/handler/v1handler"

	"github.com/stretchr/testify/require"
)

func newMux(deps v1handler.Deps) *http.ServeMux {
	mux := http.NewServeMux()
	v1handler.New(deps).Register(mux, "/v1")

	return mux
}

func post(t *testing.T, mux http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))

	return rec
}

func TestEncode(t *testing.T) {
	mux := newMux(v1handler.Deps{})

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{
			name:   "fits a frame",
			body:   `{"url":"https://www.eff.org/"}`,
			status: http.StatusOK,
			want: `{"url":"https://www.eff.org/","payload":"0165666601","length":5,"fits":true,
				"frame":"10ba0165666601"}`,
		},
		{
			name:   "custom tx power",
			body:   `{"txPower":-20,"url":"http://a.com"}`,
			status: http.StatusOK,
			want:   `{"url":"http://a.com","payload":"026107","length":3,"fits":true,"frame":"10ec026107"}`,
		},
		{
			name:   "too long for a frame",
			body:   `{"url":"https://www.a-rather-long-hostname.com/"}`,
			status: http.StatusOK,
			want: `{"url":"https://www.a-rather-long-hostname.com/",
				"payload":"01612d7261746865722d6c6f6e672d686f73746e616d6500","length":24,"fits":false}`,
		},
		{
			name:   "unknown fields are ignored",
			body:   `{"url":"http://www.a.com","extra":[1,{"x":null}]}`,
			status: http.StatusOK,
			want:   `{"url":"http://www.a.com","payload":"006107","length":3,"fits":true,"frame":"10ba006107"}`,
		},
		{
			name:   "unknown scheme",
			body:   `{"url":"ftp://example.com"}`,
			status: http.StatusBadRequest,
			want:   `{"code":"UNKNOWN_SCHEME","message":"no known scheme prefixes \"ftp://example.com\""}`,
		},
		{
			name:   "empty url",
			body:   `{"url":""}`,
			status: http.StatusBadRequest,
			want:   `{"code":"EMPTY","message":"input is empty"}`,
		},
		{
			name:   "missing url",
			body:   `{"txPower":0}`,
			status: http.StatusBadRequest,
			want:   `{"code":"BAD_REQUEST","message":"url is required"}`,
		},
		{
			name:   "tx power out of range",
			body:   `{"url":"http://a.com","txPower":128}`,
			status: http.StatusBadRequest,
			want:   `{"code":"BAD_REQUEST","message":"txPower 128 is out of range [-128, 127]"}`,
		},
		{
			name:   "invalid json",
			body:   `[1,2]`,
			status: http.StatusBadRequest,
			want:   `{"code":"BAD_REQUEST","message":"invalid json"}`,
		},
		{
			name:   "empty body",
			body:   ``,
			status: http.StatusBadRequest,
			want:   `{"code":"BAD_REQUEST","message":"body is empty"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, mux, "/v1/encode", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			require.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestDecode(t *testing.T) {
	mux := newMux(v1handler.Deps{})

	rec := post(t, mux, "/v1/decode", `{"payload":"0065660701"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.JSONEq(t, `{
		"url": "http://www.ef.com.org/",
		"tokens": [
			{"offset":0,"kind":"scheme","text":"http://www.","raw":"00"},
			{"offset":1,"kind":"literal","text":"e","raw":"65"},
			{"offset":2,"kind":"literal","text":"f","raw":"66"},
			{"offset":3,"kind":"expansion","text":".com","raw":"07"},
			{"offset":4,"kind":"expansion","text":".org/","raw":"01"}
		]
	}`, rec.Body.String())
}

func TestDecode_Errors(t *testing.T) {
	mux := newMux(v1handler.Deps{})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"not hex", `{"payload":"zz"}`, "BAD_REQUEST"},
		{"missing payload", `{}`, "BAD_REQUEST"},
		{"payload not a string", `{"payload":12}`, "BAD_REQUEST"},
		{"empty payload", `{"payload":""}`, "EMPTY"},
		{"unknown scheme code", `{"payload":"ff61"}`, "UNKNOWN_SCHEME"},
		{"short uuid", `{"payload":"040102"}`, "INVALID_LENGTH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, mux, "/v1/decode", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			require.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	mux := newMux(v1handler.Deps{})

	rec := post(t, mux, "/v1/decode", `{"payload":"04f81d4fae7dec11d0a76500a0c91e6bf6"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"url":"urn:uuid:f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`)

	rec = post(t, mux, "/v1/encode", `{"url":"urn:uuid:f81d4fae-7dec-11d0-a765-00a0c91e6bf6"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"payload":"04f81d4fae7dec11d0a76500a0c91e6bf6"`)
	require.Contains(t, rec.Body.String(), `"length":17`)
}

func TestEncode_MethodNotAllowed(t *testing.T) {
	mux := newMux(v1handler.Deps{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/encode", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
