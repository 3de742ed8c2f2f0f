package host

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/store"
)

// GuardFunc runs before every request. A non-nil error rejects it with 403,
// or with the status of an HTTPError.
type GuardFunc func(r *http.Request) error

type Options struct {
	BasePath      string
	Secret        []byte
	NonceLifetime time.Duration
	Guard         GuardFunc
	Store         store.Store
	Assets        fs.FS
	Locale        string
	Translator    render.Translator
	Logger        *slog.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		BasePath:      "/wp-admin",
		NonceLifetime: DefaultNonceLifetime,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	opts.BasePath = strings.TrimSpace(opts.BasePath)
	if opts.NonceLifetime <= 0 {
		opts.NonceLifetime = DefaultNonceLifetime
	}
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Secret != nil {
		opts.Secret = append([]byte(nil), opts.Secret...)
	}
	return opts
}

func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithSecret(secret []byte) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Secret = secret
	}
}

func WithNonceLifetime(lifetime time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.NonceLifetime = lifetime
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithStore(st store.Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = st
	}
}

// WithAssets serves files from fsys under {base}/assets/.
func WithAssets(fsys fs.FS) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Assets = fsys
	}
}

func WithTranslator(translator render.Translator, locale string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Translator = translator
		o.Locale = locale
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// CapabilityHeader is the request header HeaderCapabilities reads.
const CapabilityHeader = "X-Capabilities"

// RequireCapability rejects requests for which has reports false.
func RequireCapability(capability string, has func(r *http.Request, capability string) bool) GuardFunc {
	return func(r *http.Request) error {
		if capability == "" || has == nil {
			return nil
		}
		if !has(r, capability) {
			return StatusError{Code: http.StatusForbidden}
		}
		return nil
	}
}

// HeaderCapabilities reports whether the comma separated CapabilityHeader
// lists capability. It stands in for a real user session.
func HeaderCapabilities(r *http.Request, capability string) bool {
	for _, granted := range strings.Split(r.Header.Get(CapabilityHeader), ",") {
		if strings.TrimSpace(granted) == capability {
			return true
		}
	}
	return false
}
