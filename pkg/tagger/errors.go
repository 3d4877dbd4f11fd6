package tagger

import "fmt"

// Kind classifies why a release run stopped.
type Kind int

const (
	InvalidVersion Kind = iota + 1
	RepositoryNotFound
	VersionNotGreater
	CommitFailed
	TagCreationFailed
)

func (k Kind) String() string {
	switch k {
	case InvalidVersion:
		return "InvalidVersion"
	case RepositoryNotFound:
		return "RepositoryNotFound"
	case VersionNotGreater:
		return "VersionNotGreater"
	case CommitFailed:
		return "CommitFailed"
	case TagCreationFailed:
		return "TagCreationFailed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned by Run. Output carries raw git output when the
// failing step shelled out.
type Error struct {
	Kind    Kind
	Version string
	Highest string
	Output  string
	Err     error
}

// Sentinels for errors.Is; only Kind is compared.
var (
	ErrInvalidVersion     = &Error{Kind: InvalidVersion}
	ErrRepositoryNotFound = &Error{Kind: RepositoryNotFound}
	ErrVersionNotGreater  = &Error{Kind: VersionNotGreater}
	ErrCommitFailed       = &Error{Kind: CommitFailed}
	ErrTagCreationFailed  = &Error{Kind: TagCreationFailed}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case InvalidVersion:
		msg = fmt.Sprintf("%q is not a valid semantic version", e.Version)
	case RepositoryNotFound:
		msg = "Repository not found"
	case VersionNotGreater:
		msg = fmt.Sprintf("%q is lower or equal than the current highest tag %q", e.Version, e.Highest)
	case CommitFailed:
		msg = "Couldn't commit changes"
	case TagCreationFailed:
		msg = "Couldn't tag the last commit"
	default:
		msg = e.Kind.String()
	}

	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg + "."
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
