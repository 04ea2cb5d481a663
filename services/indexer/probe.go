package indexer

import (
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// probeDuration decodes just enough of an audio file to learn its length.
// Formats without a decoder keep a zero duration and the kiosk falls back
// to the player-reported length.
func (s *Service) probeDuration(path string) (float64, bool) {
	f, err := s.fs.Open(path)
	if err != nil {
		return 0, false
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return 0, false
	}
	if err != nil {
		f.Close()
		return 0, false
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()).Seconds(), true
}
