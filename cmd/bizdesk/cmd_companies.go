package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/sadopc/bizdesk/internal/controller"
	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/output"
)

func newCompaniesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company", "co"},
		Short:   "List, register and select companies",
	}
	cmd.AddCommand(
		newCompaniesListCmd(a),
		newCompaniesShowCmd(a),
		newCompaniesRegisterCmd(a),
		newCompaniesUpdateCmd(a),
		newCompaniesDeleteCmd(a),
		newCompaniesSelectCmd(a),
		newCompaniesSelectedCmd(a),
		newCompaniesClearCmd(a),
	)
	return cmd
}

type listFlags struct {
	search   string
	sort     string
	asc      bool
	page     int
	pageSize int
}

func (f *listFlags) register(cmd *cobra.Command, sortKeys string) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive search term")
	cmd.Flags().StringVar(&f.sort, "sort", controller.SortUpdatedAt, "sort key: "+sortKeys)
	cmd.Flags().BoolVar(&f.asc, "asc", false, "sort ascending")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "rows per page (default from config)")
}

func (f *listFlags) direction() listview.Direction {
	if f.asc {
		return listview.Asc
	}
	return listview.Desc
}

func newCompaniesListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := a.controllerOptions()
			if f.pageSize > 0 {
				opts = append(opts, controller.WithPageSize(f.pageSize))
			}
			list := controller.NewCompanyList(a.svc.Companies, opts...)
			if err := list.Load(cmd.Context()); err != nil {
				return err
			}
			list.SetSort(f.sort, f.direction())
			list.Search(f.search)
			list.SetPage(f.page)
			page := list.Page()
			return a.printResult(page, func(w io.Writer) { output.Companies(w, page) })
		},
	}
	f.register(cmd, controller.SortUpdatedAt+", "+controller.SortCompanyName)
	return cmd
}

func newCompaniesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.svc.Companies.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printResult(c, func(w io.Writer) { output.Company(w, c) })
		},
	}
}

func newCompaniesRegisterCmd(a *app) *cobra.Command {
	var r model.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := controller.NewCompanyList(a.svc.Companies, a.controllerOptions()...)
			c, err := list.Register(cmd.Context(), r)
			if err != nil {
				return err
			}
			return a.printResult(c, func(w io.Writer) {
				fmt.Fprintf(w, "Registered %s (%s)\n", c.CompanyName, c.ID)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&r.CompanyName, "name", "", "company name")
	fl.StringVar(&r.TaxID, "tax-id", "", "tax id")
	fl.StringVar(&r.CompanyAddress, "address", "", "company address")
	fl.StringVar(&r.ContactPerson, "contact", "", "contact person")
	fl.StringVar(&r.Phone, "phone", "", "mobile number")
	fl.StringVar(&r.BankName, "bank-name", "", "bank name")
	fl.StringVar(&r.BankAccount, "bank-account", "", "bank account number")
	fl.StringVar(&r.BankCode, "bank-code", "", "12 digit bank code")
	return cmd
}

func newCompaniesUpdateCmd(a *app) *cobra.Command {
	var in model.CompanyInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the editable fields of a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list := controller.NewCompanyList(a.svc.Companies, a.controllerOptions()...)
			current, err := list.Detail(ctx, args[0])
			if err != nil {
				return err
			}
			merged := current.Input()
			fl := cmd.Flags()
			set := func(name string, dst *string, v string) {
				if fl.Changed(name) {
					*dst = v
				}
			}
			set("name", &merged.CompanyName, in.CompanyName)
			set("address", &merged.Address, in.Address)
			set("contact1", &merged.Contact1, in.Contact1)
			set("phone1", &merged.Phone1, in.Phone1)
			set("contact2", &merged.Contact2, in.Contact2)
			set("phone2", &merged.Phone2, in.Phone2)
			set("remarks", &merged.Remarks, in.Remarks)

			updated, err := list.Update(ctx, args[0], merged)
			if err != nil {
				return err
			}
			return a.printResult(updated, func(w io.Writer) { output.Company(w, updated) })
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.CompanyName, "name", "", "company name")
	fl.StringVar(&in.Address, "address", "", "address")
	fl.StringVar(&in.Contact1, "contact1", "", "first contact")
	fl.StringVar(&in.Phone1, "phone1", "", "first contact phone")
	fl.StringVar(&in.Contact2, "contact2", "", "second contact")
	fl.StringVar(&in.Phone2, "phone2", "", "second contact phone")
	fl.StringVar(&in.Remarks, "remarks", "", "remarks")
	return cmd
}

func newCompaniesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.Companies.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			session, err := a.sessionStore(cmd.Context())
			if err != nil {
				return err
			}
			if id, ok, _ := session.SelectedCompany(cmd.Context()); ok && id == args[0] {
				if err := session.Clear(cmd.Context()); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.stdout, "Deleted company %s\n", args[0])
			return nil
		},
	}
}

func newCompaniesSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id|name>",
		Short: "Select the company later commands work with",
		Long:  "Select a company by id, or by the best fuzzy match on its name.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			all, err := a.svc.Companies.All(ctx)
			if err != nil {
				return err
			}
			c, err := pickCompany(all, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := selectCompany(ctx, a, c); err != nil {
				return err
			}
			return a.printResult(c, func(w io.Writer) {
				fmt.Fprintf(w, "Selected %s (%s)\n", c.CompanyName, c.ID)
			})
		},
	}
}

func selectCompany(ctx context.Context, a *app, c model.Company) error {
	session, err := a.sessionStore(ctx)
	if err != nil {
		return err
	}
	if err := session.SelectCompany(ctx, c.ID); err != nil {
		return err
	}
	return session.SaveCompany(ctx, c)
}

type companyNames []model.Company

func (c companyNames) String(i int) string { return c[i].CompanyName }
func (c companyNames) Len() int            { return len(c) }

// pickCompany matches query against ids first, then fuzzily against names.
func pickCompany(all []model.Company, query string) (model.Company, error) {
	query = strings.TrimSpace(query)
	for _, c := range all {
		if c.ID == query {
			return c, nil
		}
	}
	matches := fuzzy.FindFrom(query, companyNames(all))
	if len(matches) == 0 {
		return model.Company{}, fmt.Errorf("no company matches %q", query)
	}
	return all[matches[0].Index], nil
}

func newCompaniesSelectedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "selected",
		Short: "Show the selected company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := a.sessionStore(ctx)
			if err != nil {
				return err
			}
			id, ok, err := session.SelectedCompany(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no company selected; run 'bizdesk companies select'")
			}
			stored, err := session.Company(ctx)
			if err != nil {
				return err
			}
			c := model.Company{ID: id}
			if stored != nil && stored.ID == id {
				c = *stored
			}
			return a.printResult(c, func(w io.Writer) { output.Company(w, c) })
		},
	}
}

func newCompaniesClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the selected company and stored session data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.sessionStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Session cleared")
			return nil
		},
	}
}
