package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/scienceol/cellbank/cmd/api"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	iImpl "github.com/scienceol/cellbank/pkg/core/inventory/inventory"
	"github.com/scienceol/cellbank/pkg/core/lineage"
	lImpl "github.com/scienceol/cellbank/pkg/core/lineage/lineage"
	"github.com/spf13/cobra"
)

// New groups the offline commands that read the workbook directly.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Query the workbook without starting the server",
	}
	for _, sub := range []*cobra.Command{newRecommend(), newAvailable(), newTree()} {
		sub.PreRunE = func(cmd *cobra.Command, _ []string) error {
			api.InitBackends(cmd.Context())
			return nil
		}
		sub.PostRunE = func(cmd *cobra.Command, _ []string) error {
			api.CloseBackends(cmd.Context())
			return nil
		}
		cmd.AddCommand(sub)
	}
	return cmd
}

func newRecommend() *cobra.Command {
	req := &inventory.RecommendReq{}
	cmd := &cobra.Command{
		Use:          "recommend",
		Short:        "Rank the best vials of a cell line",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := iImpl.NewInventory().Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROW\tLOT\tPASSAGE\tREMAIN\tSCORE")
			for _, r := range recs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\n", r.Row, r.Lot, r.Passage, r.RemainVials, r.RecommendScore)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&req.Sheet, "sheet", "", "sheet name")
	cmd.Flags().StringVar(&req.CellName, "cell", "", "cell line name")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "number of vials, 0 uses RECOMMEND_LIMIT")
	_ = cmd.MarkFlagRequired("sheet")
	_ = cmd.MarkFlagRequired("cell")
	return cmd
}

func newAvailable() *cobra.Command {
	ref := &inventory.TubeRef{}
	cmd := &cobra.Command{
		Use:          "available",
		Short:        "List the unused tube labels of a row",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := iImpl.NewInventory().AvailableTubes(cmd.Context(), ref)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&ref.Sheet, "sheet", "", "sheet name")
	cmd.Flags().IntVar(&ref.Row, "row", 0, "1-based row")
	_ = cmd.MarkFlagRequired("sheet")
	_ = cmd.MarkFlagRequired("row")
	return cmd
}

func newTree() *cobra.Command {
	req := &lineage.TreeReq{}
	cmd := &cobra.Command{
		Use:          "tree",
		Short:        "Print the lineage tree of a cell line group",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := lImpl.NewLineage()
			if req.Group == "" {
				groups, err := svc.Groups(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(groups)
			}
			resp, err := svc.Tree(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(resp.Nodes)
		},
	}
	cmd.Flags().StringVar(&req.Group, "group", "", `group as "cell | source"; lists groups when empty`)
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
