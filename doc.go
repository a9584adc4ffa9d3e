// Package arcard is an augmented-reality postcard viewer for [Ebitengine].
//
// A live camera feed fills the screen and a two-sided card floats over it.
// The user drags the card with one finger, pinches and twists with two,
// scrolls to zoom on desktop and double-taps to flip it over. Device tilt
// adds a small parallax rotation to whichever face is showing.
//
// # Quick start
//
// [Run] creates a window and game loop for you:
//
//	cfg := arcard.DefaultConfig()
//	v := arcard.NewViewer(cfg, arcard.NewFrameSource(cfg.Camera), arcard.MockMotionSource{})
//	arcard.Run(v, arcard.RunConfig{
//		Content: arcard.Content{Front: front, Back: back},
//	})
//
// For full control, drive the [Viewer] from your own [ebiten.Game]: forward
// pointer input with [Viewer.HandlePointer] and [Viewer.HandleWheel], call
// [Viewer.Update] once per tick and render [Viewer.Transform].
//
// # Lifecycle
//
// [Viewer.Open] starts the camera and the orientation sensor concurrently
// and returns immediately. The session moves from Requesting to Active, or
// to Error with a [*CameraError] delivered through Callbacks.OnError. A
// missing or denied orientation sensor is never an error; tilt simply stays
// at zero. [Viewer.Close] is idempotent, discards any gesture in progress
// and releases the camera even while the permission prompt is still open.
//
// # Gestures
//
// One pointer drags, two pointers pinch (scale) and twist (rotation). Moving
// between the two never makes the card jump: every transition re-snapshots
// from the current transient transform. The committed transform is written
// only when the last pointer lifts. Scale is always kept within
// [MinScale, MaxScale].
//
// # Sources
//
// Camera frames come from a [FrameSource]: [PatternSource] synthesizes a
// moving gradient and [ImageSource] serves a still photo. Orientation comes
// from a [MotionSource]: [MockMotionSource], [MQTTMotionSource] for an IMU
// publishing over MQTT, or [RelayMotionSource], which serves a page a phone
// opens to stream its deviceorientation over a websocket.
//
// # ECS integration
//
// Set an [EventSink] with [Viewer.SetEventSink] to receive state, commit,
// flip and tap events. The arcard/ecs module provides a [Donburi] adapter.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package arcard
