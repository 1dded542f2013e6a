package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

const (
	defaultLogLines = 200
	maxLogLines     = 5000
)

// LogsHandler serves the tail of the server's log file.
type LogsHandler struct {
	logFile string
}

// NewLogsHandler creates a handler tailing logFile.
func NewLogsHandler(logFile string) *LogsHandler {
	return &LogsHandler{logFile: logFile}
}

// GetLogs handles GET /logs?lines=N.
func (h *LogsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	if h.logFile == "" {
		writeError(w, http.StatusNotFound, "no log file configured")
		return
	}

	n := defaultLogLines
	if v := r.URL.Query().Get("lines"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "lines must be a positive integer")
			return
		}
		n = min(parsed, maxLogLines)
	}

	f, err := os.Open(h.logFile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("could not open log file: %v", err))
		return
	}
	defer f.Close()

	lines, err := readLastNLines(f, n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("read log file: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, strings.Join(lines, "\n"))
}

// readLastNLines reads backwards in chunks so large logs are not loaded whole.
func readLastNLines(file *os.File, n int) ([]string, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return nil, nil
	}

	const chunkSize = 64 * 1024
	var (
		lines    []string
		leftover []byte
	)
	position := stat.Size()

	for position > 0 && len(lines) < n {
		readSize := min(int64(chunkSize), position)
		position -= readSize

		chunk := make([]byte, readSize, readSize+int64(len(leftover)))
		if _, err := file.ReadAt(chunk, position); err != nil && err != io.EOF {
			return nil, err
		}
		chunk = append(chunk, leftover...)

		parts := bytes.Split(chunk, []byte("\n"))
		// The first part may continue into the previous chunk.
		leftover = parts[0]

		for i := len(parts) - 1; i > 0 && len(lines) < n; i-- {
			line := string(bytes.TrimRight(parts[i], "\r"))
			if line == "" && len(lines) == 0 {
				continue
			}
			lines = append(lines, line)
		}
	}
	if len(leftover) > 0 && len(lines) < n {
		lines = append(lines, string(leftover))
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
