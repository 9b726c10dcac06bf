/*
Package http exposes a running DSG session over HTTP.

Routes:

	GET /healthz                liveness
	GET /status                 last progress record (JSON)
	GET /scene                  summary of the last completed scene
	GET /scene/parts/{id}       one part of that summary
	GET /events?topic=update    server-sent events for update and part hooks
	GET /metrics                Prometheus exposition
*/
package http
