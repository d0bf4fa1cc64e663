package fetch

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// minDetectConfidence is the chardet score below which the declared or
// sniffed charset is preferred.
const minDetectConfidence = 50

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts an HTML body to UTF-8. Declared charsets on job boards are
// often wrong, so the bytes themselves decide first: valid UTF-8 is kept as
// is, otherwise a statistical detector picks the encoding. Only when
// detection is inconclusive do the Content-Type header and <meta> tags apply.
func Decode(body []byte, contentType string) (string, error) {
	if utf8.Valid(body) {
		return string(bytes.TrimPrefix(body, utf8BOM)), nil
	}
	enc, name := detect(body)
	if enc == nil {
		enc, name, _ = charset.DetermineEncoding(body, contentType)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	log.Debug().Str("charset", name).Msg("decoded page")
	return string(out), nil
}

func detect(body []byte) (encoding.Encoding, string) {
	res, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || res == nil || res.Confidence < minDetectConfidence {
		return nil, ""
	}
	enc, err := htmlindex.Get(res.Charset)
	if err != nil {
		return nil, ""
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = res.Charset
	}
	return enc, name
}
