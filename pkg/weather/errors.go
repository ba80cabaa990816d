package weather

import "errors"

// ErrUnknownLocation is returned by StaticProvider for locations without a fixture.
var ErrUnknownLocation = errors.New("weather: unknown location")
