// Package gzippedhttp adds transparent gzip handling to the HTTP layer:
// decompression of gzip-encoded request bodies and compression of responses
// for clients that accept it.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

// CompressedReader wraps an io.ReadCloser and decompresses its input.
type CompressedReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

// NewCompressedReader returns a reader that yields the decompressed content
// of the gzip-encoded body.
func NewCompressedReader(requestBody io.ReadCloser) (*CompressedReader, error) {
	zr, err := gzip.NewReader(requestBody)
	if err != nil {
		return nil, err
	}

	return &CompressedReader{
		r:  requestBody,
		zr: zr,
	}, nil
}

// Read reads decompressed data from the underlying gzip stream.
func (c CompressedReader) Read(p []byte) (n int, err error) {
	return c.zr.Read(p)
}

// Close closes both the gzip reader and the wrapped body.
func (c *CompressedReader) Close() error {
	if err := c.r.Close(); err != nil {
		return err
	}
	return c.zr.Close()
}

// CompressedHTTPResponseWriter compresses the response body with gzip.
type CompressedHTTPResponseWriter struct {
	w  http.ResponseWriter
	zw *gzip.Writer
}

// NewCompressedHTTPResponseWriter wraps the response writer with a pooled
// gzip writer.
func NewCompressedHTTPResponseWriter(w http.ResponseWriter) *CompressedHTTPResponseWriter {
	zw := gzipWriterPool.Get().(*gzip.Writer)
	zw.Reset(w)
	return &CompressedHTTPResponseWriter{
		w:  w,
		zw: zw,
	}
}

// Close flushes the gzip stream and returns the writer to the pool.
func (c *CompressedHTTPResponseWriter) Close() error {
	err := c.zw.Close()
	if err != nil {
		return err
	}
	gzipWriterPool.Put(c.zw)
	return nil
}

// WriteHeader sets the Content-Encoding header for successful responses
// before writing the status code.
func (c *CompressedHTTPResponseWriter) WriteHeader(statusCode int) {
	if statusCode < 300 {
		c.w.Header().Set("Content-Encoding", "gzip")
	}
	c.w.WriteHeader(statusCode)
}

// Write writes gzip-compressed data to the response body.
func (c *CompressedHTTPResponseWriter) Write(p []byte) (int, error) {
	return c.zw.Write(p)
}

// Header returns the HTTP headers associated with the response.
func (c *CompressedHTTPResponseWriter) Header() http.Header {
	return c.w.Header()
}

// GzipResponse compresses the response when the client sent
// "Accept-Encoding: gzip".
func GzipResponse(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		finalResponse := response

		if strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			compressed := NewCompressedHTTPResponseWriter(response)
			finalResponse = compressed
			defer compressed.Close()
		}

		h.ServeHTTP(finalResponse, request)
	}

	return http.HandlerFunc(middleware)
}

// UngzipRequest replaces a gzip-encoded request body with a decompressing
// reader before the request reaches the handlers.
func UngzipRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			decompressed, err := NewCompressedReader(request.Body)
			if err != nil {
				response.WriteHeader(http.StatusInternalServerError)
				return
			}
			request.Body = decompressed
			defer decompressed.Close()
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
