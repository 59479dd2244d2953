// Package failure tags the recoverable errors every player returns, so the
// studio can turn them into a status line without inspecting strings.
package failure

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

const (
	InvalidSelection    ftag.Kind = "invalid_selection"
	MissingPrecondition ftag.Kind = "missing_precondition"
	AudioNotReady       ftag.Kind = "audio_not_ready"
	Storage             ftag.Kind = "storage"
	Full                ftag.Kind = "full"
)

// Invalid reports an unknown id. The caller leaves its state untouched.
func Invalid(what, id string) error {
	return fault.New(fmt.Sprintf("unknown %s %q", what, id),
		ftag.With(InvalidSelection),
		fmsg.WithDesc("invalid selection", fmt.Sprintf("No %s called %q", what, id)))
}

// Missing reports a playback request without what it needs.
func Missing(internal, user string) error {
	return fault.New(internal,
		ftag.With(MissingPrecondition),
		fmsg.WithDesc("missing precondition", user))
}

// NotReady reports an operation attempted before audio init.
func NotReady(what string) error {
	return fault.New(what+": audio not initialised",
		ftag.With(AudioNotReady),
		fmsg.WithDesc("audio not ready", "Audio is starting, try again"))
}

// StorageFailed wraps a persistence error.
func StorageFailed(err error, user string) error {
	return fault.Wrap(err,
		ftag.With(Storage),
		fmsg.WithDesc("storage failed", user))
}

// AtCapacity reports a list that refuses further entries.
func AtCapacity(what string, max int) error {
	return fault.New(fmt.Sprintf("%s full (%d)", what, max),
		ftag.With(Full),
		fmsg.WithDesc("capacity reached", fmt.Sprintf("Maximum %d %s saved", max, what)))
}

// Kind returns the tag of err, or "" for untagged errors.
func Kind(err error) ftag.Kind {
	if err == nil {
		return ""
	}
	return ftag.Get(err)
}

// Is reports whether err carries kind k.
func Is(err error, k ftag.Kind) bool {
	return err != nil && ftag.Get(err) == k
}

// Message returns the text to show the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}
