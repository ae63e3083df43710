// Package design builds the geometric model of a post-and-pocket structure
// and plans the toolpaths that cut it. Posts are tenon-like members defined
// by axis lines; every close pair of posts becomes a Joint holding two
// mating Pockets. Planning converts a pocket's millable face into an
// ordered move sequence for the G-code emitter.
package design
