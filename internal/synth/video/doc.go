// Package video synthesizes the frames of the orbit fixture.
//
// A Geometry describes the canvas, the box and the margin its orbit keeps
// from the frame edges. An Orbit binds a Geometry to a cycle duration and
// renders Frames as a pure function of time: the box completes exactly one
// elliptical lap per cycle and its top-left corner is truncated to whole
// pixels.
//
// This package has no orbitgen-specific dependencies; frame production is
// independent of how (or whether) the frames are encoded.
package video
