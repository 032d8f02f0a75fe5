package model

import "time"

// Shared defaults used by the watch, companion and control binaries.
const (
	DefaultTransitionDelay = 600 * time.Millisecond
	DefaultRetryBackoff    = 15 * time.Second
	DefaultRefreshMinutes  = 15
	DefaultAlertTimeout    = 5 * time.Second
	DefaultSkin            = "classic"
	DefaultFrameInterval   = 33 * time.Millisecond

	UpdateAlertTitle = "Update"
	UpdateAlertBody  = "New version available!"
)
