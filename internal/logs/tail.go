package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const followPollInterval = 250 * time.Millisecond

// TailOptions controls how Tail reads the log file. A negative Offset means
// "last Limit lines"; otherwise reading starts at Offset.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult carries the lines read plus the offset for the next call.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads log lines from path per opts. A missing file is not an error;
// it yields no lines and offset zero so callers can poll until the daemon
// writes its first entry.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}

	if opts.Offset < 0 {
		result.Lines, result.Offset, err = tailEnd(path, opts.Limit)
	} else {
		from := opts.Offset
		if from > info.Size() {
			from = info.Size()
		}
		result.Lines, result.Offset, err = readSince(path, from)
	}
	if err != nil {
		return TailResult{Offset: opts.Offset}, err
	}

	if opts.Follow && opts.Wait > 0 && len(result.Lines) == 0 {
		return pollSince(ctx, path, result.Offset, opts.Wait)
	}
	return result, nil
}

// lineRing retains the trailing N lines of a scan so arbitrarily large files
// stay bounded in memory.
type lineRing struct {
	buf  []string
	next int
	full bool
}

func (r *lineRing) push(line string) {
	r.buf[r.next] = line
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

func (r *lineRing) lines() []string {
	if !r.full {
		return append([]string(nil), r.buf[:r.next]...)
	}
	out := make([]string, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

func tailEnd(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		info, statErr := file.Stat()
		if statErr != nil {
			return nil, 0, fmt.Errorf("stat log file: %w", statErr)
		}
		return nil, info.Size(), nil
	}

	ring := lineRing{buf: make([]string, limit)}
	offset, err := scanLines(file, ring.push)
	if err != nil {
		return nil, 0, err
	}
	return ring.lines(), offset, nil
}

func readSince(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	end, err := scanLines(file, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		return nil, 0, err
	}
	return lines, end, nil
}

// scanLines feeds complete lines to fn and reports the file offset after the
// scan, which is where the next incremental read should resume.
func scanLines(file *os.File, fn func(string)) (int64, error) {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read log file: %w", err)
	}
	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("determine log offset: %w", err)
	}
	return offset, nil
}

func pollSince(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	if wait < 0 {
		wait = 0
	}
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		lines, end, err := readSince(path, result.Offset)
		if err != nil {
			return result, err
		}
		result.Offset = end
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}
