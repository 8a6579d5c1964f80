//go:build windows

package config

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// replaceFile uses MoveFileEx because os.Rename cannot replace a file another
// process holds open without FILE_SHARE_DELETE.
func replaceFile(tmp, path string) error {
	from, err := windows.UTF16PtrFromString(tmp)
	if err != nil {
		return fmt.Errorf("encode %s: %w", tmp, err)
	}
	to, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := windows.MoveFileEx(from, to, windows.MOVEFILE_REPLACE_EXISTING|windows.MOVEFILE_WRITE_THROUGH); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
