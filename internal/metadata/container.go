package metadata

import (
	"bytes"
	"errors"
	"io"

	"github.com/dhowden/tag"
)

// errUnknownContainer marks a file whose leading bytes match no supported
// audio container.
var errUnknownContainer = errors.New("unrecognized audio container")

// identifyContainer checks the file signature. Tagged containers are
// recognized by the tag reader; untagged MPEG streams and AIFF are matched
// here.
func identifyContainer(r io.ReadSeeker) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, _, err := tag.Identify(r); err == nil {
		return nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	head := make([]byte, 12)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return errUnknownContainer
		}
		return err
	}
	head = head[:n]
	if matchesContainer(head) {
		return nil
	}
	return errUnknownContainer
}

func matchesContainer(head []byte) bool {
	switch {
	case len(head) >= 3 && string(head[:3]) == "ID3":
		return true
	case len(head) >= 2 && head[0] == 0xff && head[1]&0xe0 == 0xe0:
		// MPEG audio frame sync.
		return true
	case len(head) >= 4 && (string(head[:4]) == "fLaC" || string(head[:4]) == "OggS" || string(head[:4]) == "DSD "):
		return true
	case len(head) >= 8 && string(head[4:8]) == "ftyp":
		return true
	case len(head) >= 12 && string(head[:4]) == "FORM" &&
		(bytes.Equal(head[8:12], []byte("AIFF")) || bytes.Equal(head[8:12], []byte("AIFC"))):
		return true
	}
	return false
}
