package ffmpeg

import (
	"context"
	"testing"

	"clipforge/log"
	apperrors "clipforge/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.InitLogger()
}

func TestParseProbeOutput(t *testing.T) {
	raw := []byte(`{
		"streams": [{"width": 1920, "height": 1080, "codec_name": "h264"}],
		"format": {"duration": "123.456000"}
	}`)

	info, err := parseProbeOutput(raw)
	require.NoError(t, err)
	assert.InDelta(t, 123.456, info.Duration, 1e-9)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, "h264", info.Codec)
}

func TestParseProbeOutputInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "garbage"},
		{"missing duration", `{"streams": [], "format": {}}`},
		{"zero duration", `{"streams": [], "format": {"duration": "0"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseProbeOutput([]byte(tc.raw))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeProbeFailed))
		})
	}
}

func TestParseKeyframes(t *testing.T) {
	output := "0.000000,K__\n" +
		"0.033367,___\n" +
		"2.502500,K__\n" +
		"side_data\n" +
		"N/A,K__\n" +
		"5.005000,K__\n"

	keyframes := parseKeyframes(output)
	assert.Equal(t, []float64{0, 2.5025, 5.005}, keyframes)
}

func TestParseKeyframesEmpty(t *testing.T) {
	assert.Empty(t, parseKeyframes(""))
	assert.Empty(t, parseKeyframes("0.5,___\n1.0,___\n"))
}

func TestProbeMissingInput(t *testing.T) {
	p := NewProcessor()
	_, err := p.Probe(context.Background(), "/definitely/not/here.mp4")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInputNotFound))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "12.500", formatSeconds(12.5))
	assert.Equal(t, "0.000", formatSeconds(0))
}
