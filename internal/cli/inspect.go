package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// inspectCommand creates the inspect command, which validates a snapshot
// and summarizes its branches.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "inspect [snapshot.json]",
		Short: "Validate a timeline and list its branches",
		Long: `Validate a timeline and list its branches.

Structural problems (dangling references, root mismatches, cycles, a missing
or duplicated trunk) are reported with their error code. A valid timeline is
summarized per branch, followed by any moments the layout cannot reach.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := inputArg(args)
			opts := c.pipelineOptions(cmd, &flags, input)

			runner, err := c.newRunner(ctx, input, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			snap, err := runner.Load(ctx, opts)
			if err != nil {
				return err
			}
			ix, err := snap.Index()
			if err != nil {
				printError("%s: %s", errors.GetCode(err), errors.UserMessage(err))
				return err
			}
			printSuccess("Timeline is valid")
			printNewline()
			fmt.Println(branchTable(snap))
			printNewline()
			for _, kv := range shapeSummary(ix.Shape()) {
				printKeyValue(kv[0], kv[1])
			}

			l, err := runner.ComputeLayout(ctx, snap, opts)
			if err != nil {
				return err
			}
			printKeyValue("Moments", strconv.Itoa(len(snap.Nodes)))
			printKeyValue("Layout edges", strconv.Itoa(len(l.Edges)))
			printKeyValue("Height", strconv.FormatFloat(l.Height, 'f', -1, 64))
			if len(l.Unreachable) > 0 {
				printWarning("%d unreachable moment(s)", len(l.Unreachable))
				for _, id := range l.Unreachable {
					printDetail("%s", id)
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// shapeSummary lists the graph shape as key/value pairs. Empty groups
// show "—".
func shapeSummary(sh timeline.Shape) [][2]string {
	list := func(ids []string) string {
		if len(ids) == 0 {
			return "—"
		}
		return strings.Join(ids, ", ")
	}
	return [][2]string{
		{"Relations", strconv.Itoa(sh.Edges)},
		{"Roots", list(sh.Roots)},
		{"Leaves", list(sh.Leaves)},
		{"Merges", list(sh.Merges)},
		{"Forks", list(sh.Forks)},
	}
}

// branchRows returns one row per branch in registration order: marker,
// name, ID, root and moment count.
func branchRows(snap *timeline.Snapshot) [][]string {
	counts := make(map[string]int, len(snap.Branches))
	for _, n := range snap.Nodes {
		counts[n.BranchID]++
	}

	rows := make([][]string, 0, len(snap.Branches))
	for _, b := range snap.Branches {
		marker := ""
		if b.IsTrunk {
			marker = "trunk"
		}
		root, ok := b.Root()
		if !ok {
			root = "—"
		}
		rows = append(rows, []string{marker, b.Name, b.ID, root, strconv.Itoa(counts[b.ID])})
	}
	return rows
}

func branchTable(snap *timeline.Snapshot) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := branchRows(snap)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Branch", "ID", "Root", "Moments").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(rows) && rows[row][0] != "" {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
