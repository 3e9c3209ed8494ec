package config

import "errors"

var (
	// ErrWebServerPortCanNotBeZero is returned if the webserver listening port is unset.
	ErrWebServerPortCanNotBeZero = errors.New("webserver port can not be 0")

	// ErrEmptyURL is returned if the webserver base URL is unset.
	ErrEmptyURL = errors.New("webserver url can not be empty")
)
