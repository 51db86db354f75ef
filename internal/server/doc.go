// Package server provides the HTTP surface of coursetube: routing, middleware, the JSON API and the
// OAuth callback used by `auth youtube`.
//
// # Router
//
// [BasicRouter] implements [Router] on top of gorilla/mux. Routes are registered per method, so a
// known path requested with another method answers 405. [Middleware] wraps handlers in reverse order
// (last added executes first) and only applies to routes registered after it.
//
// # API
//
// [APIHandler] serves
//
//	POST /api/youtube/playlist   import a playlist into an owned course
//	POST /api/course-items       append a manual item to an owned course
//	POST /api/progress           upsert the caller's progress on an item
//	GET  /api/progress?courseId= progress rows with item info and course stats
//
// Callers identify themselves with the [UserHeader] header, resolved by [Authenticate]. Errors are
// returned as {"error": "..."} with a status chosen by [StatusFor].
//
// # OAuth callback
//
// [OAuthHandler] validates state, exchanges the authorization code with its PKCE verifier and sends
// the token through a channel. It processes one callback only.
package server
