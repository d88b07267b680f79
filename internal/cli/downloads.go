package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/famtools/pkg/moddir"
)

// barWidth is the number of cells in the download progress bar.
const barWidth = 30

// newDownloadProgress returns a live progress bar when out is a terminal,
// and log lines otherwise.
func newDownloadProgress(logger *log.Logger, out *os.File) moddir.Progress {
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return &teaDownloads{out: out}
	}
	return newLogDownloads(logger)
}

// =============================================================================
// downloadModel - Bubbletea progress bar
// =============================================================================

type (
	downloadAdvanceMsg int64
	downloadFinishMsg  struct{ err error }
)

// downloadModel renders one download as a progress bar.
type downloadModel struct {
	file     string
	total    int64 // -1 if unknown
	done     int64
	err      error
	finished bool
}

func (m downloadModel) Init() tea.Cmd {
	return nil
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case downloadAdvanceMsg:
		m.done += int64(msg)
	case downloadFinishMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m downloadModel) View() string {
	if m.finished {
		if m.err != nil {
			return styleIconError.Render(iconError) + " " + m.file + "\n"
		}
		return styleIconSuccess.Render(iconSuccess) + " " + m.file + " " + StyleDim.Render(formatBytes(m.done)) + "\n"
	}

	if m.total <= 0 {
		return styleIconSpinner.Render(iconArrow) + " " + m.file + " " + StyleDim.Render(formatBytes(m.done))
	}

	frac := min(float64(m.done)/float64(m.total), 1)
	filled := int(frac * barWidth)
	bar := StyleHighlight.Render(strings.Repeat("█", filled)) + StyleDim.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %s %s %3.0f%% %s",
		styleIconSpinner.Render(iconArrow), m.file, bar, frac*100,
		StyleDim.Render(formatBytes(m.done)+" / "+formatBytes(m.total)))
}

// teaDownloads implements moddir.Progress with a bubbletea program per
// download.
type teaDownloads struct {
	out  io.Writer
	p    *tea.Program
	done chan struct{}
}

func (d *teaDownloads) Start(file string, total int64) {
	d.p = tea.NewProgram(downloadModel{file: file, total: total},
		tea.WithOutput(d.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		d.p.Run()
	}()
}

func (d *teaDownloads) Advance(n int64) {
	d.p.Send(downloadAdvanceMsg(n))
}

func (d *teaDownloads) Finish(err error) {
	d.p.Send(downloadFinishMsg{err: err})
	<-d.done
}

// =============================================================================
// logDownloads - Plain log output
// =============================================================================

// logDownloads implements moddir.Progress with log lines, for pipes and
// sync runs.
type logDownloads struct {
	logger *log.Logger
	file   string
	start  time.Time
	bytes  int64
}

func newLogDownloads(l *log.Logger) *logDownloads {
	return &logDownloads{logger: l}
}

func (d *logDownloads) Start(file string, total int64) {
	d.file, d.start, d.bytes = file, time.Now(), 0
	if total >= 0 {
		d.logger.Info("Downloading", "file", file, "size", formatBytes(total))
	} else {
		d.logger.Info("Downloading", "file", file)
	}
}

func (d *logDownloads) Advance(n int64) {
	d.bytes += n
}

func (d *logDownloads) Finish(err error) {
	if err != nil {
		d.logger.Debug("Download aborted", "file", d.file, "after", formatBytes(d.bytes))
		return
	}
	d.logger.Debug("Download complete", "file", d.file, "size", formatBytes(d.bytes),
		"took", time.Since(d.start).Round(time.Millisecond))
}

// formatBytes renders n with a binary unit, e.g. "1.5 MiB".
func formatBytes(n int64) string {
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
