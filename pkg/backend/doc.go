// Package backend puts frames on screen.
//
// A [Backend] wraps one external wallpaper setter. The [Dispatcher] holds
// an ordered list of them and, for every frame, uses the first one that
// works. Once a backend has succeeded during a transition, the dispatcher
// starts there for the remaining frames instead of re-trying the slower
// fallbacks ahead of it.
//
// # Backends
//
// In default priority order:
//   - swww: Wayland wallpaper daemon, per-output targets
//   - swaymsg: sway compositor, per-output targets
//   - feh: X11 root window
//   - gsettings: GNOME desktop setting, the universal fallback
//
// # Timing
//
// Between displayed frames the dispatcher sleeps for a random delay drawn
// from [Delay], minus the time the backend call itself took. Slow
// backends therefore do not stretch a transition beyond its budget.
package backend
