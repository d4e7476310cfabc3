package progress

// Writer counts bytes written through it and reports them to a Reporter
type Writer struct {
	total    uint64
	written  uint64
	reporter Reporter
}

// NewWriter creates a Writer for a transfer of total bytes (0 if unknown)
func NewWriter(total int64, reporter Reporter) *Writer {
	if total < 0 {
		total = 0
	}
	return &Writer{total: uint64(total), reporter: reporter}
}

// Write implements io.Writer
func (w *Writer) Write(p []byte) (int, error) {
	n := len(p)
	w.written += uint64(n)

	var remaining uint64
	if w.written < w.total {
		remaining = w.total - w.written
	}
	if w.reporter != nil {
		w.reporter.OnProgress(w.total, remaining)
	}
	return n, nil
}
