package esb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFrameSizeLimit(t *testing.T) {
	f, err := NewFrame(ReportKeyboard, make([]byte, MaxReportSize))
	require.NoError(t, err)
	require.Equal(t, MaxFrameSize, f.Size())

	_, err = NewFrame(ReportKeyboard, make([]byte, MaxReportSize+1))
	require.Equal(t, ErrPayloadTooLarge, err)
}

func TestFrameBytes(t *testing.T) {
	f, err := NewFrame(ReportKeyboard, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 8, 1, 2, 3, 4, 5, 6, 7, 8}, f.Bytes())

	f, err = NewFrame(ReportConsumer, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0}, f.Bytes())
}

func TestFrameWriteTo(t *testing.T) {
	f, err := NewFrame(ReportMouse, []byte{0xaa, 0xbb})
	require.NoError(t, err)
	var w bytes.Buffer
	n, err := f.WriteTo(&w)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{3, 2, 0xaa, 0xbb}, w.Bytes())
}

func TestFrameRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		typ     ReportType
		payload []byte
	}{
		{"keyboard", ReportKeyboard, []byte{0, 0, 4, 5, 6, 0, 0, 0}},
		{"consumer", ReportConsumer, []byte{0xe9, 0x00}},
		{"mouse", ReportMouse, []byte{0x01, 0x10, 0xf0, 0x00}},
		{"empty", ReportKeyboard, nil},
		{"max", ReportConsumer, bytes.Repeat([]byte{0x5a}, MaxReportSize)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewFrame(tc.typ, tc.payload)
			require.NoError(t, err)
			got, err := ReadFrame(bytes.NewReader(f.Bytes()))
			require.NoError(t, err)
			require.Equal(t, tc.typ, got.Type)
			require.Equal(t, tc.payload, got.Payload)
		})
	}
}

func TestReadFrameRejectsOversizeLength(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{1, MaxReportSize + 1}))
	require.Equal(t, ErrPayloadTooLarge, err)
}

func TestReportTypeString(t *testing.T) {
	require.Equal(t, "keyboard", ReportKeyboard.String())
	require.Equal(t, "consumer", ReportConsumer.String())
	require.Equal(t, "mouse", ReportMouse.String())
	require.Equal(t, "unknown", ReportType(9).String())
	require.True(t, ReportMouse.IsValid())
	require.False(t, ReportType(0).IsValid())
}
