package cli

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
	pkgio "github.com/mapcustomizer/mapcustomizer/pkg/io"
)

const (
	kindLabels  = "labels"
	kindMarkers = "markers"
)

// pointsFile is a label or marker records file loaded for editing.
type pointsFile struct {
	path    string
	kind    string
	labels  []pkgio.LabelRecord
	markers []pkgio.MarkerRecord
}

// loadPoints reads the records at path. With allowMissing an absent file
// yields an empty set, so "add" can create it.
func loadPoints(path, kind string, allowMissing bool) (*pointsFile, error) {
	p := &pointsFile{path: path, kind: kind}
	var err error
	switch kind {
	case kindLabels:
		p.labels, err = pkgio.ImportLabels(path)
	case kindMarkers:
		p.markers, err = pkgio.ImportMarkers(path)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown kind %q (use %s or %s)", kind, kindLabels, kindMarkers)
	}
	if err != nil && !(allowMissing && errors.Is(err, errors.ErrCodeResourceMissing)) {
		return nil, err
	}
	return p, nil
}

func (p *pointsFile) len() int {
	if p.kind == kindLabels {
		return len(p.labels)
	}
	return len(p.markers)
}

func (p *pointsFile) rows() []recordRow {
	rows := make([]recordRow, 0, p.len())
	for _, r := range p.labels {
		rows = append(rows, recordRow{Name: r.Name, X: r.X, Y: r.Y})
	}
	for _, r := range p.markers {
		rows = append(rows, recordRow{Name: r.Name, X: r.X, Y: r.Y, Speed: r.Speed})
	}
	return rows
}

func (p *pointsFile) items() []string {
	out := make([]string, 0, p.len())
	for _, r := range p.labels {
		out = append(out, r.String())
	}
	for _, r := range p.markers {
		out = append(out, r.String())
	}
	return out
}

func (p *pointsFile) add(name string, x, y int, speed string) (string, error) {
	if err := errors.ValidateRecordName(name); err != nil {
		return "", err
	}
	if p.kind == kindLabels {
		if speed != "" {
			return "", errors.New(errors.ErrCodeInvalidInput, "--speed only applies to markers")
		}
		rec := pkgio.LabelRecord{Name: name, X: x, Y: y}
		p.labels = pkgio.AppendLabel(p.labels, rec)
		return rec.String(), nil
	}
	rec := pkgio.MarkerRecord{Name: name, X: x, Y: y, Speed: speed}
	p.markers = pkgio.AppendMarker(p.markers, rec)
	return rec.String(), nil
}

func (p *pointsFile) undo() (string, bool) {
	if p.kind == kindLabels {
		rest, removed, ok := pkgio.UndoLast(p.labels)
		p.labels = rest
		return removed.String(), ok
	}
	rest, removed, ok := pkgio.UndoLast(p.markers)
	p.markers = rest
	return removed.String(), ok
}

func (p *pointsFile) removeAt(i int) (string, error) {
	if p.kind == kindLabels {
		rest, err := pkgio.RemoveAt(p.labels, i)
		if err != nil {
			return "", err
		}
		removed := p.labels[i]
		p.labels = rest
		return removed.String(), nil
	}
	rest, err := pkgio.RemoveAt(p.markers, i)
	if err != nil {
		return "", err
	}
	removed := p.markers[i]
	p.markers = rest
	return removed.String(), nil
}

func (p *pointsFile) clear() {
	p.labels, p.markers = nil, nil
}

func (p *pointsFile) save() error {
	if p.kind == kindLabels {
		return pkgio.ExportLabels(p.path, p.labels)
	}
	return pkgio.ExportMarkers(p.path, p.markers)
}

// =============================================================================
// Commands
// =============================================================================

// pointsCommand creates the records editing command.
func (c *CLI) pointsCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "points",
		Short: "Edit label and marker record files",
		Long: `Edit the JSON record files the render passes read.

Label files hold {"name", "x", "y"} records; marker files add "speed".
Select the file type with --kind.`,
	}
	cmd.PersistentFlags().StringVarP(&kind, "kind", "k", kindMarkers, "record type: labels or markers")

	cmd.AddCommand(c.pointsAddCommand(&kind))
	cmd.AddCommand(c.pointsListCommand(&kind))
	cmd.AddCommand(c.pointsUndoCommand(&kind))
	cmd.AddCommand(c.pointsRemoveCommand(&kind))
	cmd.AddCommand(c.pointsClearCommand(&kind))

	return cmd
}

func (c *CLI) pointsAddCommand(kind *string) *cobra.Command {
	var (
		name  string
		x, y  int
		speed string
	)
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Append a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPoints(args[0], *kind, true)
			if err != nil {
				return err
			}
			added, err := p.add(name, x, y, speed)
			if err != nil {
				return err
			}
			if err := p.save(); err != nil {
				return err
			}
			printSuccess("Added %s", added)
			printDetail("%d %s in %s", p.len(), *kind, p.path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "record name")
	cmd.Flags().IntVar(&x, "x", 0, "x coordinate in pixels")
	cmd.Flags().IntVar(&y, "y", 0, "y coordinate in pixels")
	cmd.Flags().StringVarP(&speed, "speed", "s", "", "speed caption (markers only)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func (c *CLI) pointsListCommand(kind *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "Print the records as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPoints(args[0], *kind, false)
			if err != nil {
				return err
			}
			if p.len() == 0 {
				printInfo("No %s in %s", *kind, p.path)
				return nil
			}
			printRecordTable(cmd.OutOrStdout(), p.rows(), *kind == kindMarkers)
			return nil
		},
	}
}

func (c *CLI) pointsUndoCommand(kind *string) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <file>",
		Short: "Remove the last record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPoints(args[0], *kind, false)
			if err != nil {
				return err
			}
			removed, ok := p.undo()
			if !ok {
				printInfo("Nothing to undo")
				return nil
			}
			if err := p.save(); err != nil {
				return err
			}
			printSuccess("Removed %s", removed)
			return nil
		},
	}
}

func (c *CLI) pointsRemoveCommand(kind *string) *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "remove <file> [index]",
		Short: "Remove a record by index, or pick it with -i",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPoints(args[0], *kind, false)
			if err != nil {
				return err
			}

			var index int
			switch {
			case interactive:
				picked, err := pickRecord(p)
				if err != nil {
					return err
				}
				if picked < 0 {
					printInfo("Nothing removed")
					return nil
				}
				index = picked
			case len(args) == 2:
				if index, err = strconv.Atoi(args[1]); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "index %q", args[1])
				}
			default:
				return errors.New(errors.ErrCodeInvalidInput, "give an index or use -i")
			}

			removed, err := p.removeAt(index)
			if err != nil {
				return err
			}
			if err := p.save(); err != nil {
				return err
			}
			printSuccess("Removed %s", removed)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick the record from a list")
	return cmd
}

func (c *CLI) pointsClearCommand(kind *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear <file>",
		Short: "Remove all records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPoints(args[0], *kind, false)
			if err != nil {
				return err
			}
			n := p.len()
			if n == 0 {
				printInfo("No %s in %s", *kind, p.path)
				return nil
			}
			if !yes {
				ok, err := confirm(fmt.Sprintf("Remove all %d %s from %s?", n, *kind, p.path))
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Nothing removed")
					return nil
				}
			}
			p.clear()
			if err := p.save(); err != nil {
				return err
			}
			printSuccess("Cleared %d %s", n, *kind)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// pickRecord runs the interactive picker and returns the chosen index, or
// -1 when the user quits.
func pickRecord(p *pointsFile) (int, error) {
	if p.len() == 0 {
		return -1, nil
	}
	model := NewRecordListModel(fmt.Sprintf("Remove from %s", p.path), p.items())
	final, err := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return -1, errors.Wrap(errors.ErrCodeInternal, err, "run picker")
	}
	return final.(RecordListModel).Selected, nil
}

func confirm(prompt string) (bool, error) {
	final, err := tea.NewProgram(NewConfirmModel(prompt), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal, err, "run prompt")
	}
	return final.(ConfirmModel).Confirmed, nil
}
