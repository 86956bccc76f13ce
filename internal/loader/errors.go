package loader

import "fmt"

// UnknownRelationshipError reports an include-path name that matched no
// declared relationship. It is fail-soft only: logged, never returned. A
// misconfigured include omits that one branch instead of aborting the call.
type UnknownRelationshipError struct {
	Type string
	Name string
}

func (e *UnknownRelationshipError) Error() string {
	return fmt.Sprintf("unknown relationship %q on type %q", e.Name, e.Type)
}

// UnsupportedFeatureError reports a requested datastore feature the executor
// cannot provide. The loader degrades (and logs it) rather than failing the
// call.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("unsupported datastore feature: %s", e.Feature)
}
