package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Tags are the text frames written by WriteTaggedMP3.
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// WriteTaggedMP3 writes an ID3v2.4 tag block followed by filler frame data.
// Empty tag fields are omitted from the block.
func WriteTaggedMP3(t testing.TB, path string, tags Tags) {
	t.Helper()
	WriteFile(t, path, append(ID3v2(tags), mpegFiller()...))
}

// WriteUntaggedMP3 writes filler bytes with no tag block.
func WriteUntaggedMP3(t testing.TB, path string) {
	t.Helper()
	WriteFile(t, path, mpegFiller())
}

// ID3v2 encodes tags as an ID3v2.4 block with UTF-8 text frames.
func ID3v2(tags Tags) []byte {
	var frames bytes.Buffer
	writeFrame := func(id, value string) {
		if value == "" {
			return
		}
		data := append([]byte{0x03}, value...)
		frames.WriteString(id)
		frames.Write(syncsafe(len(data)))
		frames.Write([]byte{0x00, 0x00})
		frames.Write(data)
	}
	writeFrame("TIT2", tags.Title)
	writeFrame("TPE1", tags.Artist)
	writeFrame("TALB", tags.Album)
	frames.Write(make([]byte, 32))

	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{0x04, 0x00, 0x00})
	out.Write(syncsafe(frames.Len()))
	out.Write(frames.Bytes())
	return out.Bytes()
}

func syncsafe(n int) []byte {
	return []byte{
		byte(n>>21) & 0x7f,
		byte(n>>14) & 0x7f,
		byte(n>>7) & 0x7f,
		byte(n) & 0x7f,
	}
}

func mpegFiller() []byte {
	filler := make([]byte, 512)
	filler[0], filler[1] = 0xff, 0xfb
	return filler
}

// WriteWAV writes a silent 16-bit mono PCM file of the given length.
func WriteWAV(t testing.TB, path string, seconds float64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const sampleRate = 8000
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, int(seconds*sampleRate)),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalize %s: %v", path, err)
	}
}
