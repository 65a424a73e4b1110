package feed

import "fmt"

// Verb classifies the action an entry represents.
type Verb int

const (
	VerbNone Verb = iota
	VerbFollow
	VerbLike
	VerbRepost
	VerbReply
	VerbDelete
)

func ParseVerb(s string) (Verb, error) {
	switch s {
	case "", "none":
		return VerbNone, nil
	case "follow":
		return VerbFollow, nil
	case "like":
		return VerbLike, nil
	case "repost":
		return VerbRepost, nil
	case "reply":
		return VerbReply, nil
	case "delete":
		return VerbDelete, nil
	default:
		return VerbNone, fmt.Errorf("unknown verb '%s'", s)
	}
}

func (v Verb) String() string {
	switch v {
	case VerbNone:
		return ""
	case VerbFollow:
		return "follow"
	case VerbLike:
		return "like"
	case VerbRepost:
		return "repost"
	case VerbReply:
		return "reply"
	case VerbDelete:
		return "delete"
	default:
		panic(fmt.Sprintf("unhandled verb %d", int(v)))
	}
}
