// Package segment parses message bodies into renderable text and image
// segments. Assistant messages may carry an inline [IMAGE_GENERATED:<file>]
// marker pointing at an image served by the backend; everything else is plain
// text handed to the markdown renderer downstream.
package segment

import "strings"

// Marker opens an image segment inside a message body. The filename runs
// until the first ']' after the marker.
const Marker = "[IMAGE_GENERATED:"

type Kind int

const (
	KindText Kind = iota
	KindImage
)

type Segment struct {
	Kind     Kind
	Text     string
	URL      string
	Filename string
}

// Segmenter builds image URLs against the media endpoint of the backend.
type Segmenter struct {
	mediaBase string
}

func New(mediaBase string) *Segmenter {
	return &Segmenter{mediaBase: strings.TrimRight(mediaBase, "/")}
}

// ImageURL returns the address the backend serves the generated file from.
func (s *Segmenter) ImageURL(filename string) string {
	return s.mediaBase + "/api/image/" + filename
}

// Split parses body into an ordered sequence of segments. Only the first
// marker occurrence is honored; any later marker is literal text in the
// trailing segment. A marker with no closing ']' is malformed: the whole
// remainder becomes the filename and the trailing text is empty. Message
// content is untrusted, so Split never fails.
func (s *Segmenter) Split(body string) []Segment {
	start := strings.Index(body, Marker)
	if start < 0 {
		return []Segment{{Kind: KindText, Text: body}}
	}

	var segs []Segment
	if before := body[:start]; before != "" {
		segs = append(segs, Segment{Kind: KindText, Text: before})
	}

	rest := body[start+len(Marker):]
	filename := rest
	after := ""
	if end := strings.Index(rest, "]"); end >= 0 {
		filename = rest[:end]
		after = rest[end+1:]
	}

	segs = append(segs, Segment{
		Kind:     KindImage,
		URL:      s.ImageURL(filename),
		Filename: filename,
	})

	if after != "" {
		segs = append(segs, Segment{Kind: KindText, Text: after})
	}
	return segs
}
