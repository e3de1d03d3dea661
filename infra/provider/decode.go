package provider

import (
	"bufio"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decompress wraps body according to the Content-Encoding header. A
// "deflate" body may be zlib-wrapped or raw; both are accepted.
func decompress(body io.Reader, contentEncoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return io.NopCloser(body), nil
	case "gzip", "x-gzip":
		return gzip.NewReader(body)
	case "deflate":
		br := bufio.NewReader(body)
		head, err := br.Peek(2)
		if err == nil && isZlibHeader(head[0], head[1]) {
			return zlib.NewReader(br)
		}
		return flate.NewReader(br), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", contentEncoding)
	}
}

func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

// lookupEncoding resolves a charset label such as "WINDOWS-1251" or "utf-8".
func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	return enc, nil
}

// charsetOf returns the charset parameter of a Content-Type header, if any.
func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// toUTF8 reads r as text in charset and returns it as UTF-8.
func toUTF8(r io.Reader, charset string) ([]byte, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(transform.NewReader(r, enc.NewDecoder()))
}
