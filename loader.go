package glyphmatrix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultMaxBytes bounds how much of a source is read into memory.
const DefaultMaxBytes = 64 << 20

type LoaderOpt func(l *Loader)

// WithDecoder sets the primary decoder. GIFDecoder is used by default.
func WithDecoder(d Decoder) LoaderOpt {
	return func(l *Loader) {
		l.decoder = d
	}
}

// WithFallback sets the decoder tried when the primary one fails. Passing
// nil disables the fallback.
func WithFallback(d Decoder) LoaderOpt {
	return func(l *Loader) {
		l.fallback = d
	}
}

func WithMaxBytes(n int64) LoaderOpt {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

func WithHTTPClient(c *http.Client) LoaderOpt {
	return func(l *Loader) {
		l.client = c
	}
}

func WithLogger(log logrus.FieldLogger) LoaderOpt {
	return func(l *Loader) {
		l.log = log
	}
}

/*
Loader fetches a source and decodes it into a FrameStore. A source is a file
path, an http(s) URL, or "-" for stdin.
*/
type Loader struct {
	decoder  Decoder
	fallback Decoder
	maxBytes int64
	client   *http.Client
	log      logrus.FieldLogger
}

func NewLoader(opts ...LoaderOpt) *Loader {
	l := Loader{
		decoder:  GIFDecoder{},
		fallback: StaticDecoder{},
		maxBytes: DefaultMaxBytes,
		client:   http.DefaultClient,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&l)
	}
	return &l
}

/*
Load fetches source and decodes it with the primary decoder, then with the
fallback decoder if that fails or produces no frames. Load never fails: any
error is logged and an empty, unloaded store is returned, which renders as
blank cells.
*/
func (l *Loader) Load(ctx context.Context, source string) *FrameStore {
	log := l.log.WithField("source", source)

	data, err := l.Fetch(ctx, source)
	if err != nil {
		log.WithError(err).Error("fetch failed")
		return NewFrameStore()
	}

	store, err := decode(l.decoder, data)
	if err == nil {
		log.WithField("frames", store.FrameCount()).Info("decoded")
		return store
	}
	if l.fallback == nil {
		log.WithError(err).Error("decode failed")
		return NewFrameStore()
	}
	log.WithError(err).Warn("decode failed, falling back to static image")

	if ctx.Err() != nil {
		return NewFrameStore()
	}
	store, err = decode(l.fallback, data)
	if err != nil {
		log.WithError(err).Error("static fallback failed")
		return NewFrameStore()
	}
	log.WithField("frames", store.FrameCount()).Info("decoded static image")
	return store
}

// decode runs d over data, turning panics from malformed input and stores
// without frames into errors.
func decode(d Decoder, data []byte) (store *FrameStore, err error) {
	defer func() {
		if r := recover(); r != nil {
			store, err = nil, fmt.Errorf("glyphmatrix: decoder panic: %v", r)
		}
	}()
	store, err = d.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if !store.Loaded() {
		return nil, ErrNoFrames
	}
	return store, nil
}

// Fetch reads all of source into memory. Files are tried before URLs.
func (l *Loader) Fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, ErrEmptySource
	}
	if source == "-" {
		return l.readAll(os.Stdin)
	}

	file, err := os.Open(source)
	if err == nil {
		defer l.close(file, source)
		return l.readAll(file)
	}
	if !isURL(source) {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer l.close(resp.Body, source)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("glyphmatrix: GET %s: %s", source, resp.Status)
	}
	return l.readAll(resp.Body)
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: l.maxBytes + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptySource
	}
	return data, nil
}

// close releases a file or response body. Failures cannot affect what was
// already read, so they are only logged.
func (l *Loader) close(c io.Closer, source string) {
	if err := c.Close(); err != nil {
		l.log.WithField("source", source).WithError(err).Warn("close failed")
	}
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
