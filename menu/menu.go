// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/surveyview/db"
	"github.com/danielhkuo/surveyview/fileutil"
	"github.com/danielhkuo/surveyview/query"
	"github.com/danielhkuo/surveyview/reconcile"
	"github.com/danielhkuo/surveyview/table"
)

const (
	AppName    = "surveyview"
	lineLength = 50
)

// Menu actions
const (
	ActionDownload = "1"
	ActionUpdate   = "2"
	ActionQuery    = "3"
	ActionExit     = "4"
)

// Query sources
const (
	SourceFile = "file"
	SourceLine = "line"
)

// ErrAborted is returned by a Prompter when the user cancels a prompt
var ErrAborted = errors.New("prompt aborted")

var errInvalidFilename = errors.New("file name may only contain letters, digits, underscores and dots")

// Option is one selectable entry of a Choose prompt
type Option struct {
	Key   string
	Label string
}

// Prompter asks the user for input
type Prompter interface {
	Choose(title string, options []Option) (string, error)
	Input(title, placeholder string) (string, error)
	Confirm(title string) (bool, error)
}

// SurveyService exposes survey data and view maintenance
type SurveyService interface {
	ViewName() string
	GetAllSurveyData(ctx context.Context, updateView bool) (*table.Table, error)
	Refresh(ctx context.Context) (*table.Table, reconcile.Result, error)
}

// QueryRunner runs permitted read-only statements
type QueryRunner interface {
	ExecuteSelect(ctx context.Context, sqlText string) (*table.Table, error)
}

type styles struct {
	title   lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		err:     r.NewStyle().Foreground(lipgloss.Color("196")),
		muted:   r.NewStyle().Faint(true),
	}
}

// Menu is the interactive loop over the four actions
type Menu struct {
	svc     SurveyService
	queries QueryRunner
	prompt  Prompter
	out     io.Writer
	version string
	styles  styles
}

func New(svc SurveyService, queries QueryRunner, prompt Prompter, out io.Writer, version string) *Menu {
	return &Menu{
		svc:     svc,
		queries: queries,
		prompt:  prompt,
		out:     out,
		version: version,
		styles:  newStyles(out),
	}
}

func (m *Menu) options() []Option {
	view := m.svc.ViewName()
	return []Option{
		{Key: ActionDownload, Label: "Download " + view},
		{Key: ActionUpdate, Label: "Update " + view},
		{Key: ActionQuery, Label: "Run custom SELECT query"},
		{Key: ActionExit, Label: "Exit"},
	}
}

// Run loops until the user exits, aborts the main prompt or ctx is cancelled.
// Errors inside an action are reported and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	m.intro()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(m.out, strings.Repeat("-", lineLength))
		choice, err := m.prompt.Choose("Select an action", m.options())
		if errors.Is(err, ErrAborted) || choice == ActionExit {
			m.outro()
			return nil
		}
		if err != nil {
			return err
		}

		if err := m.dispatch(ctx, choice); err != nil {
			if errors.Is(err, ErrAborted) {
				fmt.Fprintln(m.out, m.styles.muted.Render("Cancelled."))
				continue
			}
			m.reportError(err)
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case ActionDownload:
		return m.downloadAll(ctx)
	case ActionUpdate:
		return m.updateView(ctx)
	case ActionQuery:
		return m.customQuery(ctx)
	default:
		fmt.Fprintf(m.out, "Sorry, I didn't quite catch %q.\n", choice)
		return nil
	}
}

func (m *Menu) downloadAll(ctx context.Context) error {
	path, err := m.askSavePath("Save all survey data to (.csv)")
	if err != nil {
		return err
	}

	view := m.svc.ViewName()
	update, err := m.prompt.Confirm(fmt.Sprintf("Update %s too?", view))
	if err != nil {
		return err
	}

	data, err := m.svc.GetAllSurveyData(ctx, update)
	// The view is fresh even when the checkpoint write failed, so keep the export
	if err != nil && !(data != nil && errors.Is(err, reconcile.ErrCheckpointWrite)) {
		return err
	}

	size, saveErr := data.SaveCSV(path)
	if saveErr != nil {
		return saveErr
	}

	msg := fmt.Sprintf("-> %s rows (%s) saved to %q", humanize.Comma(int64(data.Len())), humanize.Bytes(uint64(size)), path)
	if !update {
		msg += " without updating " + view
	}
	fmt.Fprintln(m.out, m.styles.success.Render(msg))

	return err
}

func (m *Menu) updateView(ctx context.Context) error {
	data, result, err := m.svc.Refresh(ctx)
	if err != nil {
		return err
	}

	verb := "unchanged"
	if result.Rebuilt() {
		verb = "rebuilt"
	}
	fmt.Fprintln(m.out, m.styles.success.Render(fmt.Sprintf("-> %s %s from %s live rows", m.svc.ViewName(), verb, humanize.Comma(int64(data.Len())))))
	return nil
}

func (m *Menu) customQuery(ctx context.Context) error {
	sqlText, err := m.askQuery()
	if err != nil {
		return err
	}

	path, err := m.askSavePath("Save results to (.csv)")
	if err != nil {
		return err
	}

	results, err := m.queries.ExecuteSelect(ctx, sqlText)
	if err != nil {
		return err
	}

	if results.Empty() {
		fmt.Fprintln(m.out, "Successful query but no results retrieved")
		return nil
	}

	size, err := results.SaveCSV(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Executed query:\n\n%s\n\n", strings.TrimSpace(sqlText))
	fmt.Fprintln(m.out, m.styles.success.Render(fmt.Sprintf("-> %s rows (%s) saved to %q", humanize.Comma(int64(results.Len())), humanize.Bytes(uint64(size)), path)))
	return nil
}

// askQuery re-prompts until the user supplies a permitted query
func (m *Menu) askQuery() (string, error) {
	sources := []Option{
		{Key: SourceFile, Label: "Load SELECT query from a .txt file"},
		{Key: SourceLine, Label: "Input SELECT query on the command line"},
	}

	for {
		source, err := m.prompt.Choose("Choose SELECT query source", sources)
		if err != nil {
			return "", err
		}

		var sqlText string
		switch source {
		case SourceFile:
			path, err := m.prompt.Input("Path to the .txt file", "query.txt")
			if err != nil {
				return "", err
			}
			sqlText, err = fileutil.ReadSQLFile(strings.TrimSpace(path))
			if err != nil {
				fmt.Fprintln(m.out, m.styles.warn.Render(err.Error()))
				continue
			}
		case SourceLine:
			sqlText, err = m.prompt.Input("Enter your query on a single line", "SELECT ...")
			if err != nil {
				return "", err
			}
		default:
			continue
		}

		if err := query.CheckPermitted(sqlText); err != nil {
			fmt.Fprintf(m.out, "Your query doesn't seem to be quite right (%v):\n%s\n", err, sqlText)
			continue
		}
		return sqlText, nil
	}
}

// askSavePath re-prompts until the user names a writable .csv target, so no
// query runs before the destination is known to be good
func (m *Menu) askSavePath(title string) (string, error) {
	for {
		path, err := m.prompt.Input(title, "all_survey_data.csv")
		if err != nil {
			return "", err
		}

		path, err = checkSavePath(path)
		if err != nil {
			fmt.Fprintln(m.out, m.styles.warn.Render(err.Error()))
			continue
		}
		return path, nil
	}
}

func checkSavePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if err := fileutil.ValidateWritePath(path, ".csv"); err != nil {
		return "", err
	}
	if !fileutil.IsPermittedFilename(filepath.Base(path)) {
		return "", fmt.Errorf("%w: %q", errInvalidFilename, filepath.Base(path))
	}
	return path, nil
}

func (m *Menu) reportError(err error) {
	if db.IsConnectionError(err) {
		fmt.Fprintln(m.out, m.styles.err.Render("Could not reach the database."))
		fmt.Fprintln(m.out, "Check DATABASE_URL (or [db_connection] in config.toml) and that the server is running.")
	} else {
		fmt.Fprintf(m.out, "The following error occurred:\n%s\n", m.styles.err.Render(err.Error()))
	}
	fmt.Fprintln(m.out, "Sorry about it.")
}

func (m *Menu) intro() {
	fmt.Fprintln(m.out, strings.Repeat("=", lineLength))
	fmt.Fprintln(m.out, m.styles.title.Render(fmt.Sprintf("%s %s", AppName, m.version)))
}

func (m *Menu) outro() {
	fmt.Fprintln(m.out, strings.Repeat("=", lineLength))
	fmt.Fprintf(m.out, "Thanks for using %s %s\n", AppName, m.version)
	fmt.Fprintln(m.out, "Come back soon!")
}
