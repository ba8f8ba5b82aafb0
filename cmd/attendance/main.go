/*
main.go - Command-line monthly reports from a punch feed

PURPOSE:
  Runs the attendance engine over a CSV punch feed without a server or
  database: the feed is read into an in-memory store and reported on.

COMMANDS:
  report     Monthly report for one employee
  employees  Employee ids found in the feed for the month

EXAMPLES:
  attendance report --csv punches.csv -y 2025 -m 3 -e 8 --shift sat-thu
  attendance report --csv punches.csv -y 2025 -m 3 -e 8 --json
  attendance employees --csv punches.csv -y 2025 -m 3

ENVIRONMENT:
  .env is loaded if present. ATTENDANCE_SHIFT sets the default --shift.

SEE ALSO:
  - ingest/csv.go: Feed format
  - attendance/monthly.go: Report rules
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/ingest"
	"github.com/warp/attendance-engine/shift"
)

var today = time.Now()

func main() {
	log.SetFlags(0)
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	feedFlags := []cli.Flag{
		&cli.PathFlag{
			Name:     "csv",
			Aliases:  []string{"f"},
			Usage:    "punch feed `FILE` (employeeId,timestamp)",
			Required: true,
		},
		&cli.IntFlag{
			Name:        "year",
			Aliases:     []string{"y"},
			Usage:       "report year `YYYY`",
			DefaultText: "current year",
			Value:       today.Year(),
		},
		&cli.IntFlag{
			Name:        "month",
			Aliases:     []string{"m"},
			Usage:       "report month `MM`",
			DefaultText: "current month",
			Value:       int(today.Month()),
		},
		&cli.BoolFlag{
			Name:  "skip-invalid",
			Usage: "skip unreadable rows instead of failing",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log skipped rows and feed statistics",
		},
	}

	return &cli.App{
		Name:            "attendance",
		Usage:           "monthly attendance metrics from a punch feed",
		UsageText:       "attendance <command> [options]",
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		Commands: []*cli.Command{
			{
				Name:  "report",
				Usage: "monthly report for one employee",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "employee",
						Aliases:  []string{"e"},
						Usage:    "employee `ID`",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "shift",
						Aliases: []string{"s"},
						Usage:   "shift policy `KEY` (sat-wed, sat-thu)",
						Value:   string(shift.SatWed),
						EnvVars: []string{"ATTENDANCE_SHIFT"},
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print the report as JSON",
					},
				}, feedFlags...),
				Action: reportCommand,
			},
			{
				Name:   "employees",
				Usage:  "employee ids with punches in the month",
				Flags:  feedFlags,
				Action: employeesCommand,
			},
		},
	}
}

// loadSheet reads the feed through the same Store contract the server uses.
func loadSheet(c *cli.Context) (*attendance.Sheet, error) {
	period, err := calendar.NewPeriod(c.Int("year"), c.Int("month"))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(c.Path("csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	level := slog.LevelError
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))

	sheet, _, err := ingest.ReadCSV(f, period, ingest.Options{
		SkipInvalid: c.Bool("skip-invalid"),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	mem := store.NewMemory()
	if err := mem.ReplacePeriod(ctx, sheet); err != nil {
		return nil, err
	}
	return mem.LoadPeriod(ctx, period)
}

func reportCommand(c *cli.Context) error {
	policy, err := shift.Parse(c.String("shift"))
	if err != nil {
		return err
	}
	sheet, err := loadSheet(c)
	if err != nil {
		return err
	}

	employeeID := c.String("employee")
	if _, ok := sheet.Employee(employeeID); !ok {
		return fmt.Errorf("%w: %s has no punches in %s", attendance.ErrEmployeeNotFound, employeeID, sheet.Period)
	}
	report, err := sheet.Report(employeeID, policy)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(c.App.Writer, report)
}

func employeesCommand(c *cli.Context) error {
	sheet, err := loadSheet(c)
	if err != nil {
		return err
	}
	for _, id := range sheet.EmployeeIDs() {
		fmt.Fprintln(c.App.Writer, id)
	}
	return nil
}

func printReport(w io.Writer, r *attendance.MonthlyReport) error {
	fmt.Fprintf(w, "Employee %s, %s, %s\n\n", r.EmployeeID, r.Period, r.Policy.Name())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tENTRY\tEXIT\tWORKED\tABSENCE\tOVERTIME\tFLOATING")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Date, row.Weekday, row.Entry, row.Exit,
			row.Day.Worked, row.Day.Absence, row.Day.Overtime, row.Day.FloatingUsed)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\t%s\t%s\t%s\n",
		r.Totals.Worked, r.Totals.Absence, r.Totals.Overtime, r.Totals.FloatingUsed)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.AbsentDays) > 0 {
		fmt.Fprintf(w, "\nAbsent days (%d):\n", len(r.AbsentDays))
		for _, a := range r.AbsentDays {
			fmt.Fprintf(w, "  %s %-9s %s\n", a.Date, a.Weekday, a.ShiftMinutes)
		}
	}
	if len(r.MalformedDays) > 0 {
		fmt.Fprintf(w, "\nIncomplete days (%d):\n", len(r.MalformedDays))
		for _, m := range r.MalformedDays {
			fmt.Fprintf(w, "  %s %-9s %v\n", m.Date, m.Weekday, m.Punches)
		}
	}
	return nil
}
