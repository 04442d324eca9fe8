package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/errors"
	chartio "github.com/matzehuels/heightchart/pkg/io"
	"github.com/matzehuels/heightchart/pkg/scale"
	"github.com/matzehuels/heightchart/pkg/units"
)

// =============================================================================
// add
// =============================================================================

type addOpts struct {
	name    string
	height  string
	weight  float64
	color   string
	asset   string
	aspect  float64
	object  bool
	atIndex int
}

// addCommand appends an avatar to a chart file, creating the file if needed.
func (c *CLI) addCommand() *cobra.Command {
	opts := addOpts{atIndex: -1}
	cmd := &cobra.Command{
		Use:   "add [chart.json]",
		Short: "Add a person or object to a chart file",
		Example: `  heightchart add team.json --name Ana --height 172 --color "#e11d48"
  heightchart add team.json --name Bo --height "5'11\""
  heightchart add team.json --object --name Door --height 203 --asset assets/door.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdd(args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.height, "height", "", `height: 180, 180cm, 1.8m, 5'11", 5ft 11in`)
	cmd.Flags().Float64Var(&opts.weight, "weight", 0, "weight in kg (optional)")
	cmd.Flags().StringVar(&opts.color, "color", "", "fill color for person assets")
	cmd.Flags().StringVar(&opts.asset, "asset", "", "asset path or URL")
	cmd.Flags().Float64Var(&opts.aspect, "aspect", 0, "asset width/height ratio (default: measured or kind default)")
	cmd.Flags().BoolVar(&opts.object, "object", false, "add an object instead of a person")
	cmd.Flags().IntVar(&opts.atIndex, "at", opts.atIndex, "insert position (default: end)")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}

func (c *CLI) runAdd(path string, opts addOpts) error {
	height, err := units.ParseHeight(opts.height)
	if err != nil {
		return err
	}
	a := avatar.Avatar{
		Kind:    avatar.KindPerson,
		Name:    opts.name,
		Height:  height,
		Weight:  opts.weight,
		Color:   opts.color,
		Locator: opts.asset,
		Aspect:  opts.aspect,
	}
	if opts.object {
		a.Kind = avatar.KindObject
	}
	if err := a.Validate(); err != nil {
		return err
	}

	chart, err := loadChart(path, true)
	if err != nil {
		return err
	}
	st := c.newStore(chart)
	id, ok := st.Add(a)
	if !ok {
		return errors.New(errors.ErrCodeInvalidAvatar, "avatar rejected")
	}
	if opts.atIndex >= 0 {
		st.Move(id, opts.atIndex)
	}
	if err := saveChart(path, chart.Title, st); err != nil {
		return err
	}

	printSuccess("Added %s", avatarSummary(a))
	printKeyValue("ID", id)
	printKeyValue("Height", units.FormatCm(a.Height)+" · "+units.Convert(a.Height).Label())
	printFile(path)
	printNextStep("Render it", "heightchart render "+path)
	return nil
}

// =============================================================================
// remove
// =============================================================================

// removeCommand deletes an avatar by id or name.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [chart.json] [id|name]",
		Short: "Remove an avatar from a chart file",
		Args:  cobra.ExactArgs(2),

		ValidArgsFunction: completeChartAvatars,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRemove(args[0], args[1])
		},
	}
}

func (c *CLI) runRemove(path, ref string) error {
	chart, err := loadChart(path, false)
	if err != nil {
		return err
	}
	st := c.newStore(chart)
	a, ok := findAvatar(st.Avatars(), ref)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no avatar %q in %s", ref, path)
	}
	st.Remove(a.ID)
	if err := saveChart(path, chart.Title, st); err != nil {
		return err
	}
	printSuccess("Removed %s", avatarSummary(a))
	printFile(path)
	return nil
}

// findAvatar matches ref against ids first, then names case-insensitively.
func findAvatar(avs []avatar.Avatar, ref string) (avatar.Avatar, bool) {
	for _, a := range avs {
		if a.ID == ref {
			return a, true
		}
	}
	for _, a := range avs {
		if strings.EqualFold(a.Name, ref) {
			return a, true
		}
	}
	return avatar.Avatar{}, false
}

// =============================================================================
// list
// =============================================================================

// listCommand prints the avatars of a chart as a table.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [chart.json]",
		Short: "List the avatars of a chart file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := loadChart(args[0], false)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, renderAvatarTable(chart))
			return nil
		},
	}
}

func renderAvatarTable(chart chartio.Chart) string {
	rows := make([][]string, len(chart.Avatars))
	for i, a := range chart.Avatars {
		weight := "—"
		if a.HasWeight() {
			weight = units.FormatKg(a.Weight)
		}
		rows[i] = []string{
			fmt.Sprint(i + 1), a.DisplayName(), string(a.Kind),
			units.FormatCm(a.Height), units.Convert(a.Height).Label(), weight, a.ID,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("#", "Name", "Type", "Height", "Imperial", "Weight", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 6:
				return lipgloss.NewStyle().Foreground(colorMuted)
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorText)
			}
			return lipgloss.NewStyle().Foreground(colorLabel)
		})

	title := chart.Title
	if title == "" {
		title = "Chart"
	}
	return StyleTitle.Render(title) + "\n" + t.Render()
}

// =============================================================================
// convert
// =============================================================================

// convertCommand prints heights in both unit systems.
func (c *CLI) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [height...]",
		Short: "Convert heights between cm and ft/in",
		Example: `  heightchart convert 180
  heightchart convert "5'11\"" 1.62m`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				cm, err := units.ParseHeight(arg)
				if err != nil {
					return err
				}
				printKeyValue(arg, units.FormatCm(cm)+" = "+units.Convert(cm).Label())
			}
			return nil
		},
	}
}

// =============================================================================
// scale
// =============================================================================

type scaleOpts struct {
	tallest     string
	rows        int
	compression float64
}

// scaleCommand prints the ruled rows for a reference height or a chart.
func (c *CLI) scaleCommand() *cobra.Command {
	var opts scaleOpts
	cmd := &cobra.Command{
		Use:   "scale [chart.json]",
		Short: "Print the ruled scale rows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bc := c.cfg.BoardConfig()
			rows := bc.Rows
			if opts.rows > 0 {
				rows = opts.rows
			}
			compression := bc.Desktop.Bounds.Min
			if opts.compression > 0 {
				compression = opts.compression
			}

			var heights []float64
			if len(args) == 1 {
				chart, err := loadChart(args[0], false)
				if err != nil {
					return err
				}
				for _, a := range chart.Avatars {
					heights = append(heights, a.Height)
				}
			}
			if opts.tallest != "" {
				h, err := units.ParseHeight(opts.tallest)
				if err != nil {
					return err
				}
				heights = append(heights, h)
			}

			ref := scale.Reference(heights, bc.Baseline)
			printScale(ref, scale.Generate(ref, rows, bc.ScalingFactor, compression), rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.tallest, "tallest", "", "reference height (default: tallest avatar or the baseline)")
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "row count (default from config)")
	cmd.Flags().Float64Var(&opts.compression, "compression", 0, "compression multiplier (default: minimum)")
	return cmd
}

func printScale(ref float64, rows []scale.Row, rowCount int) {
	printInfo("Reference %s", units.FormatCm(ref))
	base := scale.BaselineIndex(rowCount)
	for i, r := range rows {
		line := fmt.Sprintf("%6s cm  %8s", r.Label(), r.ImperialLabel())
		if i == base {
			fmt.Fprintln(stdout, "  "+StyleHighlight.Render(line+"  baseline"))
			continue
		}
		fmt.Fprintln(stdout, "  "+StyleDim.Render(line))
	}
}
