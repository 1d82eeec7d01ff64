package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/controller"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/output"
	"github.com/sadopc/bizdesk/internal/validate"
)

func newContractsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contracts",
		Aliases: []string{"contract", "ct"},
		Short:   "List and edit contracts",
	}
	cmd.AddCommand(
		newContractsListCmd(a),
		newContractsShowCmd(a),
		newContractsCreateCmd(a),
		newContractsUpdateCmd(a),
		newContractsDeleteCmd(a),
	)
	return cmd
}

func newContractsListCmd(a *app) *cobra.Command {
	var (
		f       listFlags
		company string
		all     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contracts of the selected company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts := a.controllerOptions()
			if f.pageSize > 0 {
				opts = append(opts, controller.WithPageSize(f.pageSize))
			}
			list := controller.NewContractList(a.svc.Contracts, opts...)
			if !all {
				id, err := a.selectedCompany(ctx, company)
				if err != nil {
					return err
				}
				list.SetCompany(id)
			}
			if err := list.Load(ctx); err != nil {
				return err
			}
			list.SetSort(f.sort, f.direction())
			list.Search(f.search)
			list.SetPage(f.page)
			page := list.Page()
			totals := list.Totals()
			if a.format() == output.JSON {
				return output.PrintJSON(a.stdout, struct {
					Page   any               `json:"page"`
					Totals controller.Totals `json:"totals"`
				}{page, totals})
			}
			output.Contracts(a.stdout, page)
			fmt.Fprintf(a.stdout, "Total %s, paid %s, outstanding %s\n",
				output.Money(totals.Amount), output.Money(totals.Paid), output.Money(totals.Outstanding))
			return nil
		},
	}
	f.register(cmd, controller.SortUpdatedAt+", "+controller.SortAmount+", "+controller.SortTitle)
	cmd.Flags().StringVar(&company, "company", "", "company id (default the selected company)")
	cmd.Flags().BoolVar(&all, "all", false, "list contracts of every company")
	return cmd
}

func newContractsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.svc.Contracts.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if session, err := a.sessionStore(ctx); err == nil {
				if err := session.SaveContract(ctx, c); err != nil {
					a.logger.Debug("storing contract in session", zap.Error(err))
				}
			}
			return a.printResult(c, func(w io.Writer) { output.Contract(w, c) })
		},
	}
}

// contractFlags are the editable contract fields as typed on the command line.
type contractFlags struct {
	title   string
	row     validate.ContractRow
	content string
	memo    string
	fileID  string
}

func (f *contractFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "contract title")
	fl.StringVar(&f.row.ContractAmount, "amount", "", "contract amount")
	fl.StringVar(&f.row.PaidAmount, "paid", "", "paid amount")
	fl.StringVar(&f.row.StartDate, "start", "", "start date (YYYY-MM-DD)")
	fl.StringVar(&f.row.EndDate, "end", "", "end date (YYYY-MM-DD)")
	fl.StringVar(&f.row.FinalPaymentAmount, "final-amount", "", "final payment amount")
	fl.StringVar(&f.row.FinalPaymentDate, "final-date", "", "final payment date")
	fl.StringVar(&f.content, "content", "", "main content")
	fl.StringVar(&f.memo, "memo", "", "memo")
	fl.StringVar(&f.fileID, "file-id", "", "id of the uploaded contract file")
}

func newContractsCreateCmd(a *app) *cobra.Command {
	var (
		f       contractFlags
		company string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contract for the selected company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			companyID, err := a.selectedCompany(ctx, company)
			if err != nil {
				return err
			}
			if companyID == "" {
				return fmt.Errorf("no company selected; pass --company or run 'bizdesk companies select'")
			}
			amount, paid, final, err := validate.Contract(f.row)
			if err != nil {
				return err
			}
			list := controller.NewContractList(a.svc.Contracts, a.controllerOptions()...)
			created, err := list.Create(ctx, model.ContractInput{
				CompanyID:          companyID,
				ContractTitle:      f.title,
				ContractAmount:     amount,
				PaidAmount:         paid,
				StartDate:          f.row.StartDate,
				EndDate:            f.row.EndDate,
				FinalPaymentAmount: final,
				FinalPaymentDate:   f.row.FinalPaymentDate,
				MainContent:        f.content,
				Memo:               f.memo,
				FileID:             f.fileID,
			})
			if err != nil {
				return err
			}
			return a.printResult(created, func(w io.Writer) { output.Contract(w, created) })
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&company, "company", "", "company id (default the selected company)")
	return cmd
}

func newContractsUpdateCmd(a *app) *cobra.Command {
	var f contractFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit the amounts and dates of a contract",
		Long:  "Flags that are not given keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			existing, err := a.svc.Contracts.Get(ctx, args[0])
			if err != nil {
				return err
			}
			row := rowOf(existing)
			fl := cmd.Flags()
			for name, pair := range map[string][2]*string{
				"amount":       {&row.ContractAmount, &f.row.ContractAmount},
				"paid":         {&row.PaidAmount, &f.row.PaidAmount},
				"start":        {&row.StartDate, &f.row.StartDate},
				"end":          {&row.EndDate, &f.row.EndDate},
				"final-amount": {&row.FinalPaymentAmount, &f.row.FinalPaymentAmount},
				"final-date":   {&row.FinalPaymentDate, &f.row.FinalPaymentDate},
				"content":      {&existing.MainContent, &f.content},
				"memo":         {&existing.Memo, &f.memo},
				"file-id":      {&existing.FileID, &f.fileID},
			} {
				if fl.Changed(name) {
					*pair[0] = *pair[1]
				}
			}
			title := existing.ContractTitle
			if fl.Changed("title") {
				title = f.title
			}

			list := controller.NewContractList(a.svc.Contracts, a.controllerOptions()...)
			updated, err := list.SaveRow(ctx, existing, title, row)
			if err != nil {
				return err
			}
			return a.printResult(updated, func(w io.Writer) { output.Contract(w, updated) })
		},
	}
	f.register(cmd)
	return cmd
}

// rowOf renders the editable cells of c the way a user would type them.
func rowOf(c model.Contract) validate.ContractRow {
	row := validate.ContractRow{
		ContractAmount:   fmt.Sprint(c.ContractAmount),
		PaidAmount:       fmt.Sprint(c.PaidAmount),
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		FinalPaymentDate: c.FinalPaymentDate,
	}
	if c.FinalPaymentAmount != nil {
		row.FinalPaymentAmount = fmt.Sprint(*c.FinalPaymentAmount)
	}
	return row
}

func newContractsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := controller.NewContractList(a.svc.Contracts, a.controllerOptions()...)
			if err := list.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted contract %s\n", args[0])
			return nil
		},
	}
}
