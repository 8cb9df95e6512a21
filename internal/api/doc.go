// Package api serves the alertboard dashboard: the same-origin proxy to the
// alerting backend, the per-session dashboard endpoints and the HTML page.
package api
