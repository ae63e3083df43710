// Package geom provides the small 3D toolkit the joint designer is built
// on: orthonormal planes, lines, rigid transforms, bounds, and intervals.
// Coordinates are sdfx v3.Vec values so geometry flows into the solid
// modeling layer without conversion.
package geom
