// Package moderation defines the approve/reject decisions moderators send
// back from the chat and how they are encoded in callback data.
package moderation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedAction = errors.New("malformed moderation action")

type Kind string

const (
	KindApprove Kind = "approve"
	KindReject  Kind = "reject"
)

const separator = "_"

// Action is a moderator's decision about one review.
type Action struct {
	Kind     Kind
	ReviewID uint
}

func Approve(id uint) Action { return Action{Kind: KindApprove, ReviewID: id} }

func Reject(id uint) Action { return Action{Kind: KindReject, ReviewID: id} }

// Token encodes the action as callback data, e.g. "approve_42".
func (a Action) Token() string {
	return string(a.Kind) + separator + strconv.FormatUint(uint64(a.ReviewID), 10)
}

func (a Action) String() string {
	return a.Token()
}

// ParseAction decodes "<approve|reject>_<id>". Anything else, including an
// unknown kind, extra separators, signs or a zero id, is rejected.
func ParseAction(token string) (Action, error) {
	kind, rawID, ok := strings.Cut(token, separator)
	if !ok || strings.Contains(rawID, separator) {
		return Action{}, fmt.Errorf("%w: %q", ErrMalformedAction, token)
	}

	switch Kind(kind) {
	case KindApprove, KindReject:
	default:
		return Action{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedAction, kind)
	}

	if rawID == "" || strings.TrimLeft(rawID, "0123456789") != "" {
		return Action{}, fmt.Errorf("%w: invalid id %q", ErrMalformedAction, rawID)
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 || uint64(uint(id)) != id {
		return Action{}, fmt.Errorf("%w: invalid id %q", ErrMalformedAction, rawID)
	}

	return Action{Kind: Kind(kind), ReviewID: uint(id)}, nil
}
