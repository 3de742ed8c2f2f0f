package host

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full mount path for an admin endpoint under basePath.
func MountPath(basePath, endpoint string) string {
	return mountPath(basePath, endpoint)
}

// RegisterRoutes registers every admin endpoint on mux and returns the
// registered patterns.
func (h *Host) RegisterRoutes(mux Mux) ([]string, error) {
	if mux == nil {
		return nil, fmt.Errorf("host: missing mux")
	}
	routes := []struct {
		path    string
		handler http.Handler
	}{
		{PathOptionsPage, h.PageHandler()},
		{PathOptions, h.OptionsHandler()},
		{PathAssets, h.AssetsHandler()},
		{PathPayload, h.PayloadHandler()},
		{PathPlugins, h.PluginsHandler()},
	}
	patterns := make([]string, 0, len(routes))
	for _, route := range routes {
		pattern := mountPath(h.opts.BasePath, route.path)
		mux.Handle(pattern, route.handler)
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// Handler returns a ServeMux with every admin endpoint registered.
func (h *Host) Handler() http.Handler {
	mux := http.NewServeMux()
	_, _ = h.RegisterRoutes(mux)
	return mux
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
