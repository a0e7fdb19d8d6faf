package audio

import (
	"fmt"

	"gopkg.in/hraban/opus.v2"
)

const maxOpusFrameSamples = 960 // 60ms at 16kHz

// DecodeOpus decodes one opus packet to 16-bit mono PCM at 16 kHz.
// Devices that cannot stream raw PCM send opus frames instead.
func DecodeOpus(packet []byte) ([]int16, error) {
	dec, err := opus.NewDecoder(TargetSampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}
	pcm := make([]int16, maxOpusFrameSamples)
	n, err := dec.Decode(packet, pcm)
	if err != nil {
		return nil, fmt.Errorf("opus decode: %w", err)
	}
	return pcm[:n], nil
}
