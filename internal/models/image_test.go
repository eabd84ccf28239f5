package models

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeInline(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}

	img := EncodeInline(payload)

	require.Equal(t, ImageInline, img.Kind())
	assert.True(t, strings.HasPrefix(img.Inline(), "data:image/jpeg;base64,"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), strings.TrimPrefix(img.Inline(), InlineImagePrefix))
}

func TestNormalize(t *testing.T) {
	raw := []byte("legacy-bytes")

	tests := []struct {
		name string
		img  Image
		want string
	}{
		{"inline passes through", InlineImage("data:image/jpeg;base64,AAAA"), "data:image/jpeg;base64,AAAA"},
		{"plain inline passes through", InlineImage("AAAA"), "AAAA"},
		{"legacy buffer is base64 without prefix", LegacyBufferImage(raw), base64.StdEncoding.EncodeToString(raw)},
		{"empty legacy buffer", LegacyBufferImage(nil), ""},
		{"missing image", Image{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.img.Normalize())
		})
	}
}

func TestImageUnmarshalJSON(t *testing.T) {
	raw := []byte{1, 2, 250}

	tests := []struct {
		name     string
		input    string
		wantKind ImageKind
		wantStr  string
		wantBuf  []byte
	}{
		{"inline string", `"data:image/jpeg;base64,AQL6"`, ImageInline, "data:image/jpeg;base64,AQL6", nil},
		{"null", `null`, ImageNone, "", nil},
		{"node buffer object", `{"data":{"type":"Buffer","data":[1,2,250]}}`, ImageLegacyBuffer, "", raw},
		{"byte array", `{"data":[1,2,250],"contentType":"image/png"}`, ImageLegacyBuffer, "", raw},
		{"base64 data", `{"data":"AQL6"}`, ImageLegacyBuffer, "", raw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var img Image
			require.NoError(t, json.Unmarshal([]byte(tt.input), &img))
			assert.Equal(t, tt.wantKind, img.Kind())
			assert.Equal(t, tt.wantStr, img.Inline())
			assert.Equal(t, tt.wantBuf, img.Buffer())
		})
	}
}

func TestImageUnmarshalJSON_Invalid(t *testing.T) {
	inputs := []string{
		`{"contentType":"image/png"}`,
		`{"data":[1,2,300]}`,
		`{"data":"not base64!"}`,
		`{"data":true}`,
	}

	for _, input := range inputs {
		var img Image
		assert.Error(t, json.Unmarshal([]byte(input), &img), input)
	}
}

func TestImageMarshalJSON_LegacyShapeSurvivesDecode(t *testing.T) {
	original := LegacyBufferImage([]byte("abc"))

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"type":"Buffer","data":[97,98,99]}}`, string(data))

	var decoded Image
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.Normalize(), decoded.Normalize())
}

func TestFormatDisplayDate(t *testing.T) {
	ts := time.Date(2023, time.September, 15, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "Fri Sep 15 2023", FormatDisplayDate(ts, time.UTC))
	assert.Equal(t, "Fri Sep 01 2023", FormatDisplayDate(time.Date(2023, time.September, 1, 8, 0, 0, 0, time.UTC), time.UTC))

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "Sat Sep 16 2023", FormatDisplayDate(ts, tokyo))
}
