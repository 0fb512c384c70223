// Package runtime embeds the JS runtime the code generator's client
// artifacts depend on: the reactive core (signals/effects/computed/
// ownership/batching), the DOM/reconciliation layer, and the RPC fetch
// wrapper. Emitted verbatim ahead of generated component code, the way the
// teacher emits static boilerplate via string-building — here via
// go:embed'd template assets instead of inline strings.Builder writes.
package runtime

import _ "embed"

//go:embed core.js.tmpl
var Core string

//go:embed dom.js.tmpl
var Dom string

//go:embed rpc.js.tmpl
var RPC string
