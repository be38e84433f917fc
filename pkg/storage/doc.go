// Package storage owns the output directory.
//
// A run starts with Reset, which removes the directory and everything in it
// and recreates it empty. Images are then written with SaveImage as
// image_<index>.jpg, each through a temporary file that is renamed into place
// so a partially written file never carries the final name.
//
// Usage:
//
//	manager := storage.NewManager("images")
//	if err := manager.Reset(); err != nil {
//	    return err
//	}
//	path, n, err := manager.SaveImage(1, bytes.NewReader(data))
package storage
