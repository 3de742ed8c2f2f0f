package host

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-settings/pkg/openapi"
	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/schema"
)

// Admin endpoints relative to the base path.
const (
	PathOptionsPage = "/options-general.php"
	PathOptions     = "/options.php"
	PathAssets      = "/assets/"
	PathPayload     = "/settings.json"
	PathPlugins     = "/plugins.php"
)

const maxFormMemory = 8 << 20

// PageURL is the admin URL of a registered page.
func (h *Host) PageURL(slug string) string {
	return mountPath(h.opts.BasePath, PathOptionsPage) + "?page=" + url.QueryEscape(slug)
}

func (h *Host) guard(w http.ResponseWriter, r *http.Request) bool {
	if h.opts.Guard == nil {
		return true
	}
	if err := h.opts.Guard(r); err != nil {
		h.opts.Logger.Warn("request rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
		writeGuardError(w, err)
		return false
	}
	return true
}

func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, method := range methods {
		if r.Method == method {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

// PageHandler serves GET options-general.php?page=SLUG.
func (h *Host) PageHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodGet, http.MethodHead) || !h.guard(w, r) {
			return
		}
		slug := r.URL.Query().Get("page")
		var notices []render.Notice
		if r.URL.Query().Get("settings-updated") == "true" {
			notices = append(notices, render.Updated(h.translate("Settings saved.")))
		}
		referer := r.URL.Query()
		referer.Del("settings-updated")
		h.writePage(w, r, http.StatusOK, slug, r.URL.Path+"?"+referer.Encode(), notices)
	})
}

// OptionsHandler serves POST options.php. A bad nonce is rejected with 403,
// invalid options re-render the page with 422 and a successful save
// redirects back to the page with 303.
func (h *Host) OptionsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodPost) || !h.guard(w, r) {
			return
		}
		if err := parseForm(r); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		plan, result, err := h.Save(r.Context(), r.Form)
		switch {
		case errors.Is(err, ErrInvalidNonce):
			h.opts.Logger.Warn("nonce rejected", slog.String("page", r.Form.Get(render.FieldOptionPage)))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		case errors.Is(err, ErrUnknownPage):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		case err != nil:
			h.opts.Logger.Error("settings save failed", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		slug := plan.Page.Slug
		if len(result.Errors) > 0 {
			h.opts.Logger.Info("settings rejected", slog.String("page", slug), slog.Int("errors", len(result.Errors)))
			s := schema.Schema{Sections: plan.Sections}
			notices := render.FieldNotices(s, plan.Page.Namespace, result.Errors.Messages())
			referer := r.Form.Get(render.FieldReferer)
			if referer == "" {
				referer = h.PageURL(slug)
			}
			h.writePage(w, r, http.StatusUnprocessableEntity, slug, referer, notices)
			return
		}

		h.opts.Logger.Info("settings saved", slog.String("page", slug), slog.Int("options", len(result.Saved)))
		http.Redirect(w, r, h.redirectTarget(r.Form.Get(render.FieldReferer), slug), http.StatusSeeOther)
	})
}

// PayloadHandler serves the OpenAPI description of a page's options.
func (h *Host) PayloadHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodGet, http.MethodHead) || !h.guard(w, r) {
			return
		}
		plan, err := h.Plan(r.URL.Query().Get("page"))
		if err != nil {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		doc, err := openapi.Build(plan, openapi.Options{Path: mountPath(h.opts.BasePath, PathPayload)})
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		raw, err := doc.MarshalJSON()
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(raw)
	})
}

type pluginLinks struct {
	Plugin string   `json:"plugin"`
	Links  []string `json:"links"`
}

// PluginsHandler lists every plugin's action links as JSON.
func (h *Host) PluginsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodGet) || !h.guard(w, r) {
			return
		}
		data := []pluginLinks{}
		for _, plugin := range h.Plugins() {
			data = append(data, pluginLinks{Plugin: plugin, Links: h.ActionLinks(plugin, nil)})
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	})
}

// AssetsHandler serves the configured asset bundle. Without one every
// request is a 404.
func (h *Host) AssetsHandler() http.Handler {
	if h.opts.Assets == nil {
		return http.NotFoundHandler()
	}
	files := http.FileServer(http.FS(h.opts.Assets))
	return http.StripPrefix(mountPath(h.opts.BasePath, PathAssets), files)
}

func (h *Host) writePage(w http.ResponseWriter, r *http.Request, status int, slug, referer string, notices []render.Notice) {
	entry, ok := h.Page(slug)
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	body, err := h.RenderPage(r.Context(), slug, referer, notices)
	if err != nil {
		h.opts.Logger.Error("page render failed", slog.String("page", slug), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	head, foot := h.queue.Tags()
	title := html.EscapeString(h.translate(entry.Page.Title))
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\"/>\n<title>%s</title>\n%s</head>\n<body class=\"wp-admin\">\n", title, head)
	buf.Write(body)
	fmt.Fprintf(&buf, "\n%s</body>\n</html>\n", foot)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func (h *Host) redirectTarget(referer, slug string) string {
	target := h.PageURL(slug)
	if referer != "" {
		if parsed, err := url.Parse(referer); err == nil && parsed.Host == "" && strings.HasPrefix(parsed.Path, "/") {
			query := parsed.Query()
			query.Del("settings-updated")
			parsed.RawQuery = query.Encode()
			target = parsed.String()
		}
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "settings-updated=true"
}

func (h *Host) translate(msg string) string {
	return render.Translate(render.RenderOptions{Locale: h.opts.Locale, Translator: h.opts.Translator}, msg)
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}
