//go:build !windows

package main

import "golang.org/x/sys/unix"

// checkWritable asks the kernel whether the current user may create entries in dir.
func checkWritable(dir string) error {
	return unix.Access(dir, unix.W_OK|unix.X_OK)
}
