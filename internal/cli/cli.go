// Package cli implements reportctl, the command line front end for printing
// result cards to files.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-result-api/internal/printing"
	"github.com/noah-isme/gema-result-api/internal/repository"
	"github.com/noah-isme/gema-result-api/internal/result"
	"github.com/noah-isme/gema-result-api/internal/service"
)

// Dependencies are the services a command needs once configuration is loaded.
type Dependencies struct {
	Results  service.ResultService
	Students repository.StudentRepository
}

// Loader builds Dependencies lazily so commands that need no database, such
// as grades, never connect.
type Loader func(ctx context.Context) (Dependencies, error)

type printFlags struct {
	term   string
	year   string
	output string
}

// NewRootCommand assembles the reportctl command tree.
func NewRootCommand(load Loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Print and inspect academic result cards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newPrintCommand(load), newGradesCommand())
	return root
}

func newPrintCommand(load Loader) *cobra.Command {
	var flags printFlags

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Render result cards into a print-ready HTML file",
	}
	cmd.PersistentFlags().StringVar(&flags.term, "term", result.FirstTerm, "Term name, e.g. \"First Term\"")
	cmd.PersistentFlags().StringVar(&flags.year, "year", "", "Academic year, e.g. 2024/2025")
	cmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "File to write the document to")
	_ = cmd.MarkPersistentFlagRequired("year")
	_ = cmd.MarkPersistentFlagRequired("output")

	cmd.AddCommand(newPrintStudentCommand(load, &flags), newPrintClassCommand(load, &flags))
	return cmd
}

func newPrintStudentCommand(load Loader, flags *printFlags) *cobra.Command {
	var studentID uint

	cmd := &cobra.Command{
		Use:   "student",
		Short: "Print one student's card",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := load(cmd.Context())
			if err != nil {
				return err
			}

			receipt, err := deps.Results.PrintCard(cmd.Context(), service.CardQuery{
				StudentID:    studentID,
				Term:         flags.term,
				AcademicYear: flags.year,
				Access:       service.AccessFull,
			}, printing.FileSurface{Path: flags.output})
			if err != nil {
				return err
			}
			return writeReceipt(cmd.OutOrStdout(), receipt)
		},
	}
	cmd.Flags().UintVar(&studentID, "id", 0, "Student identifier")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newPrintClassCommand(load Loader, flags *printFlags) *cobra.Command {
	var (
		classID  uint
		students string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "class",
		Short: "Print the cards of selected students of a class in one document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := parseIDs(students)
			if err != nil {
				return err
			}

			deps, err := load(cmd.Context())
			if err != nil {
				return err
			}

			if all {
				members, err := deps.Students.ListActiveByClass(cmd.Context(), classID)
				if err != nil {
					return fmt.Errorf("list class students: %w", err)
				}
				ids = ids[:0]
				for _, member := range members {
					ids = append(ids, member.ID)
				}
			}

			receipt, err := deps.Results.PrintClass(cmd.Context(), service.ClassPrintQuery{
				ClassID:      classID,
				Term:         flags.term,
				AcademicYear: flags.year,
				StudentIDs:   ids,
			}, printing.FileSurface{Path: flags.output})
			if err != nil {
				return err
			}
			return writeReceipt(cmd.OutOrStdout(), receipt)
		},
	}
	cmd.Flags().UintVar(&classID, "id", 0, "Class identifier")
	cmd.Flags().StringVar(&students, "students", "", "Comma separated student identifiers, printed in this order")
	cmd.Flags().BoolVar(&all, "all", false, "Print every active student of the class")
	_ = cmd.MarkFlagRequired("id")
	cmd.MarkFlagsMutuallyExclusive("students", "all")
	return cmd
}

func newGradesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grades",
		Short: "Show the grading scale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "GRADE\tRANGE\tREMARK")
			for _, grade := range result.Scale() {
				fmt.Fprintf(w, "%s\t%d-%d\t%s\n", grade.Label, grade.Min, grade.Max, grade.Remark)
			}
			return w.Flush()
		},
	}
}

func writeReceipt(w io.Writer, receipt printing.Receipt) error {
	_, err := fmt.Fprintf(w, "wrote %d card(s), %d bytes to %s\n", receipt.Cards, receipt.Bytes, receipt.Location)
	return err
}

func parseIDs(input string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid student identifier %q", part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
