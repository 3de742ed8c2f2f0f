// Package host is a small in-process admin host for settings pages. It keeps
// the registration tables, stores options, issues nonces, queues page assets
// and serves the page, the options endpoint, the asset bundle and the
// payload description over net/http.
//
// The routes mirror the admin URLs a settings plugin expects:
//
//	GET  {base}/options-general.php?page=SLUG
//	POST {base}/options.php
//	GET  {base}/assets/...
//	GET  {base}/settings.json?page=SLUG
//	GET  {base}/plugins.php
package host
