package types

// Kind is the delivery resource type of an asset. It selects both the URL
// path segment and the default transformation set.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindRaw   Kind = "raw"
)

func (k Kind) String() string {
	return string(k)
}

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindImage, KindVideo, KindRaw:
		return Kind(s), true
	default:
		return "", false
	}
}
