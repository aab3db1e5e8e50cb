package service

import "errors"

var (
	// ErrDispatcherShutDown is returned by entrypoint calls after Stop.
	ErrDispatcherShutDown = errors.New("the dispatcher is shut down")

	// ErrDispatcherNotStarted is returned when Stop is called before Start.
	ErrDispatcherNotStarted = errors.New("the dispatcher has not been started")
)
