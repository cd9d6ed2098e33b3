package domain

// CaptureCause classifies a microphone acquisition failure.
type CaptureCause string

const (
	CaptureCausePermission CaptureCause = "permission_denied"
	CaptureCauseNoDevice   CaptureCause = "no_device"
	CaptureCauseOther      CaptureCause = "other"
)

// CaptureError is a classified, fatal microphone failure. It crosses
// into the state machine as a terminal error; network failures never do.
type CaptureError struct {
	Cause  CaptureCause
	Detail string
}

func (e *CaptureError) Error() string {
	if e.Detail == "" {
		return "audio capture failed: " + string(e.Cause)
	}
	return "audio capture failed (" + string(e.Cause) + "): " + e.Detail
}

// ErrorCode maps the capture cause onto the pipeline error taxonomy.
func (e *CaptureError) ErrorCode() ErrorCode {
	switch e.Cause {
	case CaptureCausePermission:
		return ErrorCodeMicPermission
	case CaptureCauseNoDevice:
		return ErrorCodeMicAbsent
	default:
		return ErrorCodeCapture
	}
}

// StateReason maps the capture cause onto a transition reason.
func (e *CaptureError) StateReason() StateReason {
	switch e.Cause {
	case CaptureCausePermission:
		return ReasonMicPermission
	case CaptureCauseNoDevice:
		return ReasonMicAbsent
	default:
		return ReasonCaptureFailed
	}
}
