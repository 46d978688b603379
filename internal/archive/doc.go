// Package archive reads the metadata document embedded in a plugin archive.
//
// Archives are zip containers read as a stream, so only the bytes up to the
// metadata entry are ever decoded.
package archive
