package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/surveyview/auth"
	"github.com/danielhkuo/surveyview/fileutil"
	"github.com/danielhkuo/surveyview/table"
)

var errNoAdminSalt = errors.New("ADMIN_KEY_SALT is not set, no admin key can be derived")

var (
	exportOutput string
	exportUpdate bool
	queryFile    string
	queryOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all survey data as CSV",
	Long: `Export one row per (user, survey) with one ans_q<N> column per question.

NULL means the question is not part of that survey; -1 means it is part of the
survey but the user did not answer it. With --update the persisted view is
reconciled against the exported data as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOutput != "-" {
			if err := fileutil.ValidateWritePath(exportOutput, ".csv"); err != nil {
				return err
			}
		}

		return withApp(cmd, cmd.ErrOrStderr(), func(a *app) error {
			data, err := a.reconciler.GetAllSurveyData(cmd.Context(), exportUpdate)
			if err != nil {
				return err
			}
			return writeTable(cmd, data, exportOutput)
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the view if live data changed since the last checkpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cmd.ErrOrStderr(), func(a *app) error {
			_, _, err := a.reconciler.Refresh(cmd.Context())
			return err
		})
	},
}

var queryCmd = &cobra.Command{
	Use:   "query [SQL]",
	Short: "Run a read-only SELECT and write the result as CSV",
	Long: `Run a SELECT given as an argument or loaded from a .txt file with --file.

Statements containing UPDATE, DROP, DELETE, CREATE or ALTER are refused.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sqlText string
		switch {
		case queryFile != "" && len(args) > 0:
			return errors.New("give either a query argument or --file, not both")
		case queryFile != "":
			text, err := fileutil.ReadSQLFile(queryFile)
			if err != nil {
				return err
			}
			sqlText = text
		case len(args) == 1:
			sqlText = args[0]
		default:
			return errors.New("no query given")
		}

		if queryOutput != "-" {
			if err := fileutil.ValidateWritePath(queryOutput, ".csv"); err != nil {
				return err
			}
		}

		return withApp(cmd, cmd.ErrOrStderr(), func(a *app) error {
			result, err := a.executor.ExecuteSelect(cmd.Context(), sqlText)
			if err != nil {
				return err
			}
			if result.Empty() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Successful query but no results retrieved")
				return nil
			}
			return writeTable(cmd, result, queryOutput)
		})
	},
}

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Print the fingerprint the view was last built from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cmd.ErrOrStderr(), func(a *app) error {
			fp, exists, err := a.reconciler.Checkpoint()
			if err != nil {
				return err
			}
			if !exists {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no checkpoint yet\n", a.reconciler.ViewName())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.reconciler.ViewName(), fp)
			return nil
		})
	},
}

var adminKeyCmd = &cobra.Command{
	Use:   "admin-key",
	Short: "Print the X-Admin-Key that serve accepts for view refreshes",
	Long: `Print the key derived from ADMIN_KEY_SALT and the view name.

Send it as the X-Admin-Key header on POST /survey-data/refresh.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AdminKeySalt == "" {
			return errNoAdminSalt
		}
		fmt.Fprintln(cmd.OutOrStdout(), auth.GenerateAdminKey(cfg.ViewName, cfg.AdminKeySalt))
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the survey tables if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cmd.ErrOrStderr(), func(a *app) error {
			if err := a.store.CreateSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s)\n", a.store.Type())
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "CSV file to write (- for stdout)")
	exportCmd.Flags().BoolVar(&exportUpdate, "update", false, "Also reconcile the persisted view")

	queryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "Load the query from a .txt file")
	queryCmd.Flags().StringVarP(&queryOutput, "output", "o", "-", "CSV file to write (- for stdout)")

	rootCmd.AddCommand(exportCmd, refreshCmd, queryCmd, checkpointCmd, initCmd, adminKeyCmd)
}

// writeTable writes CSV to stdout or saves it and reports the size on stderr
func writeTable(cmd *cobra.Command, t *table.Table, output string) error {
	if output == "-" || strings.TrimSpace(output) == "" {
		return t.WriteCSV(cmd.OutOrStdout())
	}

	size, err := t.SaveCSV(output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s rows (%s) saved to %s\n", humanize.Comma(int64(t.Len())), humanize.Bytes(uint64(size)), output)
	return nil
}
