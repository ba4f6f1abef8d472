package model

import "errors"

// ErrFailToGraph is returned when a plot has no underlying data points.
// Handlers map it to a plain 500 response.
var ErrFailToGraph = errors.New("failed to generate data for graph")
