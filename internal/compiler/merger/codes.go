package merger

// Diagnostic code registry for directory-group merge validation. All are
// errors: a merge conflict always fails the build, there is no strict-mode
// distinction here (that only applies to the semantic analyzer's warnings).
const (
	codeUnreadableSource    = "E0300" // a sibling .tova file could not be read or parsed
	codeDuplicateClientName = "E0301" // duplicate component/state/computed/store/client fn name across the group
	codeDuplicateServerName = "E0302" // duplicate function/model/route/singleton name within a server label group
	codeDuplicateSharedName = "E0303" // duplicate type/function/interface name across the group's shared blocks
)
