//go:build windows

package services

import "golang.org/x/sys/windows"

func volumeStats(path string) (total, used, free int64, err error) {
	var freeForCaller, totalBytes, totalFree uint64
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &freeForCaller, &totalBytes, &totalFree); err != nil {
		return 0, 0, 0, err
	}
	total = int64(totalBytes)
	free = int64(freeForCaller)
	used = total - int64(totalFree)
	return total, used, free, nil
}
