package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSourcesCommand(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "列出公共數據源",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := a.client().Sources(cmd.Context(), category)
			if err != nil {
				return fmt.Errorf("获取数据源失败: %w", err)
			}
			if len(sources) == 0 {
				a.printf("沒有匹配的數據源\n")
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\t名稱\t提供方\t分類\t質量")
			for _, s := range sources {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Name, s.Provider, s.Category, s.QualityScore)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "按分類篩選 (Trade/貿易, Economy/經濟 ...)")
	cmd.AddCommand(newCategoriesCommand(a))
	return cmd
}

func newCategoriesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "列出可用的分類篩選",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			labels, err := a.client().Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("获取分类失败: %w", err)
			}
			for _, l := range labels {
				if l.Category == "" {
					a.printf("%s\n", l.Label)
					continue
				}
				a.printf("%s (%s)\n", l.Label, l.Category)
			}
			return nil
		},
	}
}

func newComplianceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compliance",
		Short: "查看數據出境合規路徑",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.client().Compliance(cmd.Context())
			if err != nil {
				return fmt.Errorf("获取合规路径失败: %w", err)
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "數據類型\t規模閾值\t合規要求")
			for _, p := range paths {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Type, p.Threshold, p.Requirement)
			}
			return w.Flush()
		},
	}
}
