// Package config defines the settings of an emcee run and provides helpers to
// load, validate and save them in YAML format.
//
// Every field has a default, so emcee runs without any config file at all.
package config
