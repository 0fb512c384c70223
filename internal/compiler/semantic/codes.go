package semantic

// Diagnostic code registry. Errors (E0***) always fail the build; warnings
// (W0***) fail it only when the analyzer runs in strict mode.
const (
	codeDuplicateDecl    = "E0200" // a name already bound in the same scope
	codeUnresolvedIdent  = "E0202" // identifier with no binding anywhere in scope
	codeInvalidAssignTgt = "E0203" // assignment target is not an identifier/member/index

	codeUnusedLocal        = "W0201" // a let/var binding never read
	codeShadowedBinding    = "W0202" // a binding reuses a name already bound in an enclosing scope
	codeIgnoredExprValue   = "W0203" // an if/match used in expression form as a bare statement
)
