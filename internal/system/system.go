package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// DefaultWorkers возвращает число логических ядер; если gopsutil не смог
// их определить, используется runtime.NumCPU.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// MemoryReport кратко описывает состояние памяти для отчета -stats.
func MemoryReport() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Sprintf("memory: unavailable (%v)", err)
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return fmt.Sprintf("System RAM: %.1f%% used of %d MiB | Go heap: %d MiB | Frame buffers: %d",
		vm.UsedPercent, vm.Total>>20, ms.HeapAlloc>>20, FrameAllocations())
}

// OutputPath строит имя файла по счетчику: {dir}/{counter}_output.gif.
func OutputPath(dir string, counter int) string {
	return filepath.Join(dir, fmt.Sprintf("%d_output.gif", counter))
}

// EnsureDir создает папку вывода, если ее нет.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// FindLatestFile ищет в dir самый свежий файл с одним из расширений.
func FindLatestFile(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		matched := len(extensions) == 0
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no matching files in %s", dir)
	}
	return latestFile, nil
}

// FindLatestGIF is FindLatestFile for animations.
func FindLatestGIF(dir string) (string, error) {
	return FindLatestFile(dir, ".gif")
}
