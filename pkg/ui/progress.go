package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

const barWidth = 40

// ProgressReader passes reads through and redraws a progress line on w.
// Without a known total it shows the byte count only.
type ProgressReader struct {
	r        io.Reader
	w        io.Writer
	bar      progress.Model
	total    int64
	read     int64
	lastDraw time.Time
	interval time.Duration
}

// NewProgressReader wraps r; total is the expected size or -1 when unknown
func NewProgressReader(r io.Reader, w io.Writer, total int64) *ProgressReader {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = barWidth

	return &ProgressReader{
		r:        r,
		w:        w,
		bar:      bar,
		total:    total,
		interval: 100 * time.Millisecond,
	}
}

// Read implements io.Reader
func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	if err == io.EOF {
		p.draw()
		fmt.Fprintln(p.w)
	} else if time.Since(p.lastDraw) >= p.interval {
		p.draw()
	}
	return n, err
}

// BytesRead returns how much has passed through so far
func (p *ProgressReader) BytesRead() int64 {
	return p.read
}

// Ratio returns the completed fraction, clamped to 1, or 0 without a known total
func (p *ProgressReader) Ratio() float64 {
	if p.total <= 0 {
		return 0
	}
	ratio := float64(p.read) / float64(p.total)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// Line renders the current progress line without drawing it
func (p *ProgressReader) Line() string {
	if p.total <= 0 {
		return fmt.Sprintf("%s %s", Green(p.w, "[DOWNLOADING]"), FormatBytes(p.read))
	}

	return fmt.Sprintf("%s %s %s / %s",
		Green(p.w, "[DOWNLOADING]"), p.bar.ViewAs(p.Ratio()), FormatBytes(p.read), FormatBytes(p.total))
}

func (p *ProgressReader) draw() {
	p.lastDraw = time.Now()
	fmt.Fprintf(p.w, "\r%s", p.Line())
}

// FormatBytes renders a byte count with a binary unit
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
