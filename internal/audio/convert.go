package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// NormalizeWAV converts any WAV payload to the fixed output format
// (16 kHz mono 16-bit PCM WAV). Stereo input is downmixed, other sample
// rates are resampled.
func NormalizeWAV(data []byte) ([]byte, error) {
	info, pcm, err := ParseWAV(data)
	if err != nil {
		return nil, err
	}
	if info.Bits != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d", info.Bits)
	}

	samples := BytesToInt16(pcm)
	if info.Channels == 2 {
		samples = DownmixStereo(samples)
	} else if info.Channels != 1 {
		return nil, fmt.Errorf("unsupported channel count %d", info.Channels)
	}
	samples = Resample(samples, info.SampleRate, TargetSampleRate)

	return PCMToWAV(Int16ToBytes(samples), TargetSampleRate), nil
}

// Recoder converts compressed audio (mp3 and friends) to the fixed output
// format via an ffmpeg subprocess.
type Recoder struct {
	FFmpegPath string
}

func NewRecoder(ffmpegPath string) *Recoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Recoder{FFmpegPath: ffmpegPath}
}

// ToWAV16k pipes the input through ffmpeg and returns 16 kHz mono 16-bit WAV.
func (r *Recoder) ToWAV16k(ctx context.Context, data []byte, sourceFormat string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.FFmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-f", sourceFormat, "-i", "pipe:0",
		"-ar", "16000", "-ac", "1", "-sample_fmt", "s16",
		"-f", "wav", "pipe:1",
	)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg recode: %w (stderr: %s)", err, stderr.String())
	}
	return stdout.Bytes(), nil
}
