package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/karrick/godirwalk"
)

// Discover walks dir and returns the most recently modified .csv file.
// Used when no explicit source path is configured.
func Discover(dir string) (string, error) {
	var (
		newest    string
		newestMod time.Time
	)

	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ".csv") {
				return nil
			}
			fi, err := os.Stat(path)
			if err != nil {
				return nil
			}
			if newest == "" || fi.ModTime().After(newestMod) {
				newest = path
				newestMod = fi.ModTime()
			}
			return nil
		},
	})
	if err != nil {
		return "", fmt.Errorf("walk %s: %w", dir, err)
	}
	if newest == "" {
		return "", fmt.Errorf("%w: no csv under %s", ErrNoSource, dir)
	}
	return newest, nil
}
