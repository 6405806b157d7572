// Package inspect serves one navigation session over HTTP so it can be
// driven and observed from outside the process.
//
// Read endpoints:
//
//	GET /state            persisted navigation record
//	GET /frame            latest frame
//	GET /routes           registered routes with layout chains
//	GET /match?path=/x    route resolution, 404 with the error view
//	GET /open?type=t&k=v  open views of a route type
//	GET /events           WebSocket stream of frames
//	GET /metrics          Prometheus metrics, when a gatherer is set
//
// Operations (POST, JSON bodies):
//
//	/navigate             {"from", "path", "query", "props", "append", "target", "layout"}
//	/go                   {"href", "replace"}
//	/close/{id}
//	/active/{id}
//	/query/{id}           {"params", "replaceAll"}
//	/props/{id}           {"params", "replaceAll"}
//	/back, /forward
//	/resize               {"width"}
//
// Unknown view ids answer 404 with a coded error body.
package inspect
