package arcard

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied reports that the user declined camera access.
	ErrPermissionDenied = errors.New("arcard: camera permission denied")
	// ErrDeviceUnavailable reports a missing camera, an insecure context, or a
	// hardware failure.
	ErrDeviceUnavailable = errors.New("arcard: camera unavailable")
	// ErrOrientationUnavailable reports that tilt input cannot be delivered.
	// It is logged, never surfaced to Callbacks.OnError.
	ErrOrientationUnavailable = errors.New("arcard: orientation sensor unavailable")

	// ErrSessionClosed is returned by CameraSession.Start after Stop.
	ErrSessionClosed = errors.New("arcard: camera session closed")
	// ErrAlreadyOpen is returned by Viewer.Open when called twice.
	ErrAlreadyOpen = errors.New("arcard: viewer already open")
	// ErrViewerClosed is returned by Viewer.Open on a closed viewer. Create a
	// new Viewer instead.
	ErrViewerClosed = errors.New("arcard: viewer closed")
)

// CameraErrorKind classifies a camera failure.
type CameraErrorKind uint8

const (
	PermissionDenied  CameraErrorKind = iota // user declined access
	DeviceUnavailable                        // no device, insecure context, hardware error
)

func (k CameraErrorKind) String() string {
	if k == PermissionDenied {
		return "permission_denied"
	}
	return "device_unavailable"
}

// CameraError is the typed failure reported when a camera session cannot be
// started. Both kinds are recoverable by calling Start again.
type CameraError struct {
	Kind CameraErrorKind
	Err  error
}

// Error returns a message suitable for showing to the user.
func (e *CameraError) Error() string {
	switch e.Kind {
	case PermissionDenied:
		return "Camera access was denied. Allow camera access in your browser or system settings and try again."
	default:
		return "Unable to access the camera. Check that your device has a camera and that the page is served over HTTPS."
	}
}

func (e *CameraError) Unwrap() error { return e.Err }

// Is matches the kind sentinels so callers can write
// errors.Is(err, ErrPermissionDenied).
func (e *CameraError) Is(target error) bool {
	switch target {
	case ErrPermissionDenied:
		return e.Kind == PermissionDenied
	case ErrDeviceUnavailable:
		return e.Kind == DeviceUnavailable
	}
	return false
}

// classifyCameraError wraps a source error into a CameraError. Anything that
// is not an explicit permission denial counts as the device being unavailable.
func classifyCameraError(err error) *CameraError {
	var ce *CameraError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, ErrPermissionDenied) {
		return &CameraError{Kind: PermissionDenied, Err: err}
	}
	return &CameraError{Kind: DeviceUnavailable, Err: fmt.Errorf("open camera: %w", err)}
}
