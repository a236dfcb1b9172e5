// Package cli implements the monsync command line interface.
package cli
