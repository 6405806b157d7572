// Package router implements the route registry of a stacked-view application.
//
// The registry compiles route patterns once and then answers three questions
// for a path: which component renders it, which layouts wrap it, and which
// error component handles it when nothing matches.
//
// # Patterns
//
// Patterns are "/"-delimited. A segment of the form [name] captures one or
// more non-separator characters; captures may be mixed with literal text
// inside a segment:
//
//	/                     → home
//	/users/[id]           → /users/42          {id: "42"}
//	/blog/post-[slug]     → /blog/post-hello   {slug: "hello"}
//
// Routes are tested in registration order and the first structural match
// wins. There is no specificity ranking: register "/users/new" before
// "/users/[id]" if both should match.
//
// # Layouts
//
// A route with explicit layouts uses exactly those. Otherwise its chain is
// collected from the layouts map by walking the route pattern from the root:
//
//	layouts:
//	  "/":              RootLayout
//	  "/users":         UsersLayout
//	  "/users#dialog":  UsersDialogLayout
//
//	/users/[id] → [RootLayout, UsersLayout, UsersDialogLayout(key "dialog")]
//
// Views select the keyed chain with Match.LayoutsFor.
//
// # Base Path
//
// Applications mounted under a prefix set WithBasePath. Match strips the
// prefix from inbound paths and FullPath adds it to outbound ones.
package router
