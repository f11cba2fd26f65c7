// Package ui provides the operator terminal interface: a system log pane, a
// security alerts pane, per-severity counters, and a command input, built on
// the tview library.
package ui

import (
	"strings"

	"github.com/rivo/tview"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const MaxLines = 100 // keep the last 100 entries, exported

// ChannelWriter funnels log output into the System Log pane.
type ChannelWriter struct{ Ch chan string }

// Write implements the io.Writer interface for our channel.
func (w ChannelWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	w.Ch <- msg
	return len(p), nil
}

// SetupUI creates and configures the tview application, views, and layout.
// It returns the application, the root layout flexbox, the system log view,
// the alerts view, the three per-severity counter views, and the input field.
func SetupUI(sysChan chan string) (
	*tview.Application,
	*tview.Flex,
	*tview.TextView,
	*tview.TextView,
	*tview.TextView,
	*tview.TextView,
	*tview.TextView,
	*tview.InputField,
) {
	app := tview.NewApplication()

	sysView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() { app.Draw() })
	sysView.SetBorder(true).SetTitle(" System Log ")

	alertView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() { app.Draw() })
	alertView.SetBorder(true).SetTitle(" Security Alerts ")

	lowView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetChangedFunc(func() { app.Draw() })
	lowView.SetBorder(true).SetTitle(" Low ")

	medView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetChangedFunc(func() { app.Draw() })
	medView.SetBorder(true).SetTitle(" Medium ")

	highView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetChangedFunc(func() { app.Draw() })
	highView.SetBorder(true).SetTitle(" High ")

	input := tview.NewInputField().
		SetLabel("Command: ").
		SetFieldWidth(0)

	// Bottom row: severity counters, then input
	bottomFlex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(lowView, 0, 1, false).
		AddItem(medView, 0, 1, false).
		AddItem(highView, 0, 1, false).
		AddItem(input, 0, 3, true)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(sysView, 0, 2, false).
		AddItem(alertView, 0, 4, false).
		AddItem(bottomFlex, 4, 1, true)

	return app, layout, sysView, alertView, lowView, medView, highView, input
}

// ClearMarker empties a pane's buffer when sent through its channel.
const ClearMarker = "\x00clear"

// PumpTextview reads lines from a channel and updates a tview.TextView, keeping only MaxLines.
func PumpTextview(app *tview.Application, view *tview.TextView, ch <-chan string, buffer *[]string) {
	for line := range ch {
		if line == ClearMarker {
			*buffer = (*buffer)[:0]
			app.QueueUpdateDraw(func() { view.SetText("") })
			continue
		}
		*buffer = append(*buffer, line)
		if len(*buffer) > MaxLines {
			*buffer = (*buffer)[1:]
		}
		app.QueueUpdateDraw(func() {
			view.SetText(strings.Join(*buffer, "\n"))
			view.ScrollToEnd()
		})
	}
}

// counterPrinter groups digits so large tallies stay readable.
var counterPrinter = message.NewPrinter(language.English)

// PumpCounterView reads running per-severity tallies from a channel and
// updates the given view.
func PumpCounterView(app *tview.Application, view *tview.TextView, ch <-chan uint64) {
	for n := range ch {
		n := n
		app.QueueUpdateDraw(func() {
			view.SetText(counterPrinter.Sprintf("%d\nalerts", n))
		})
	}
}
