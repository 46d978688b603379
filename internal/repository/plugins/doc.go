// Package plugins manages the archive files of a plugin directory.
//
// New archives are installed atomically: the bytes land in a hidden scratch
// file next to the target and are renamed into place only once complete.
package plugins
