package httpserver

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// encoder is the part of gzip.Writer and zstd.Encoder the middleware uses.
type encoder interface {
	io.Writer
	Flush() error
	Close() error
	Reset(w io.Writer)
}

type codec struct {
	name string
	pool sync.Pool
	make func(w io.Writer) encoder
}

// codecs in preference order.
var codecs = []*codec{
	{name: "zstd", make: func(w io.Writer) encoder {
		zw, err := zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(err)
		}
		return zw
	}},
	{name: "gzip", make: func(w io.Writer) encoder {
		gw, _ := gzip.NewWriterLevel(w, gzip.DefaultCompression)
		return gw
	}},
}

func (c *codec) get(w io.Writer) encoder {
	if v := c.pool.Get(); v != nil {
		e := v.(encoder)
		e.Reset(w)
		return e
	}
	return c.make(w)
}

// put closes e, dropping its trailer when the response had no body.
func (c *codec) put(e encoder, discard bool) {
	if discard {
		e.Reset(io.Discard)
	}
	_ = e.Close()
	c.pool.Put(e)
}

func negotiate(acceptEncoding string) *codec {
	for _, c := range codecs {
		if strings.Contains(acceptEncoding, c.name) {
			return c
		}
	}
	return nil
}

func isUpgrade(r *http.Request) bool {
	return r.Header.Get("Upgrade") != "" ||
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}

func isNoBodyStatus(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

type compressWriter struct {
	http.ResponseWriter
	enc    encoder
	noBody bool
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if cw.noBody {
		return cw.ResponseWriter.Write(b)
	}
	cw.Header().Del("Content-Length")
	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	if isNoBodyStatus(code) {
		cw.noBody = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Flush() {
	if !cw.noBody {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("httpserver: response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Compression encodes response bodies with zstd or gzip, preferring zstd.
// HEAD requests, protocol upgrades and already encoded responses pass
// through untouched.
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := negotiate(r.Header.Get("Accept-Encoding"))
		if c == nil || r.Method == http.MethodHead || isUpgrade(r) || w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", c.name)
		w.Header().Add("Vary", "Accept-Encoding")

		cw := &compressWriter{ResponseWriter: w, enc: c.get(w)}
		defer func() { c.put(cw.enc, cw.noBody) }()
		next.ServeHTTP(cw, r)
	})
}
