//go:build windows

package main

import "os"

// checkWritable creates and removes a probe file, since Windows has no access(2).
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".sumtree-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
