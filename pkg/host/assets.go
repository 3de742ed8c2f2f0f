package host

import (
	"bytes"
	"fmt"
	"html"
	"sync"
)

// Asset is a queued stylesheet or script.
type Asset struct {
	Handle string
	Src    string
	Deps   []string
}

// Queue collects page assets. A handle is queued once; later enqueues of the
// same handle are ignored.
type Queue struct {
	mu      sync.Mutex
	styles  []Asset
	scripts []Asset
	seen    map[string]struct{}
}

// NewQueue returns an empty asset queue.
func NewQueue() *Queue {
	return &Queue{seen: make(map[string]struct{})}
}

// EnqueueStyle queues a stylesheet.
func (q *Queue) EnqueueStyle(handle, src string, deps ...string) {
	q.enqueue(&q.styles, "style:"+handle, Asset{Handle: handle, Src: src, Deps: deps})
}

// EnqueueScript queues a script.
func (q *Queue) EnqueueScript(handle, src string, deps ...string) {
	q.enqueue(&q.scripts, "script:"+handle, Asset{Handle: handle, Src: src, Deps: deps})
}

func (q *Queue) enqueue(list *[]Asset, key string, asset Asset) {
	if asset.Handle == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.seen[key]; ok {
		return
	}
	q.seen[key] = struct{}{}
	asset.Deps = append([]string(nil), asset.Deps...)
	*list = append(*list, asset)
}

// Styles returns queued stylesheets in enqueue order.
func (q *Queue) Styles() []Asset {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Asset(nil), q.styles...)
}

// Scripts returns queued scripts ordered so every dependency that is also
// queued comes before its dependants.
func (q *Queue) Scripts() []Asset {
	q.mu.Lock()
	defer q.mu.Unlock()
	return orderByDeps(q.scripts)
}

func orderByDeps(assets []Asset) []Asset {
	byHandle := make(map[string]Asset, len(assets))
	for _, asset := range assets {
		byHandle[asset.Handle] = asset
	}
	out := make([]Asset, 0, len(assets))
	done := make(map[string]bool, len(assets))
	var visit func(asset Asset)
	visit = func(asset Asset) {
		if _, ok := done[asset.Handle]; ok {
			return
		}
		done[asset.Handle] = false
		for _, dep := range asset.Deps {
			if queued, ok := byHandle[dep]; ok {
				visit(queued)
			}
		}
		done[asset.Handle] = true
		out = append(out, asset)
	}
	for _, asset := range assets {
		visit(asset)
	}
	return out
}

// Tags renders the queued stylesheets and scripts.
func (q *Queue) Tags() (head, foot string) {
	var styles, scripts bytes.Buffer
	for _, style := range q.Styles() {
		fmt.Fprintf(&styles, `<link rel="stylesheet" id="%s-css" href="%s"/>`+"\n", html.EscapeString(style.Handle), html.EscapeString(style.Src))
	}
	for _, script := range q.Scripts() {
		if script.Src == "" {
			continue
		}
		fmt.Fprintf(&scripts, `<script id="%s-js" src="%s"></script>`+"\n", html.EscapeString(script.Handle), html.EscapeString(script.Src))
	}
	return styles.String(), scripts.String()
}
