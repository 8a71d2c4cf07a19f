package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/pterm/pterm"
)

var (
	BoldRed      = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Console prints cli output through pterm
type Console struct {
	out io.Writer
}

func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWithWriter prints tables and plain text to out
func NewConsoleWithWriter(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

// StatusHandle stops a running spinner
type StatusHandle interface {
	Stop()
}

type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status starts a spinner with message
func (c *Console) Status(message string) StatusHandle {
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

func (h *statusHandle) Stop() {
	if h.spinner != nil {
		h.spinner.Stop()
	}
}

// RenderTable renders a boxed table, the first row is the header
func RenderTable(columns []string, rows [][]string) string {
	tableData := pterm.TableData{columns}
	for _, row := range rows {
		tableData = append(tableData, row)
	}
	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	rendered, err := table.Srender()
	if err != nil {
		return ""
	}
	return rendered
}

// PrintTable writes a rendered table to the console output
func (c *Console) PrintTable(columns []string, rows [][]string) {
	fmt.Fprintln(c.out, RenderTable(columns, rows))
}

// Severity colours a severity or status label
func Severity(label string) string {
	switch label {
	case shared.SeverityCritical, shared.SeverityHigh, shared.StatusFailed, shared.StatusError:
		return BoldRed(label)
	case shared.SeverityMedium, shared.StatusWarning, shared.StatusReviewRequired:
		return BrightYellow(label)
	case shared.StatusPassed, shared.StatusSuccess:
		return BrightGreen(label)
	}
	return BrightCyan(label)
}
