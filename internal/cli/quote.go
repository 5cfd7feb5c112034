package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"miniloan-backend/pkg/emi"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print an EMI quote",
		Long: `Print the monthly installment and totals for a principal and tenure.
The rate is either given with --rate or derived from --income using the
same income tiers the API applies.`,
		Example: "  miniloan quote --amount 10000 --tenure 12 --income 30000",
		Args:    cobra.NoArgs,
		RunE:    runQuote,
	}
	cmd.Flags().String("amount", "", "Principal")
	cmd.Flags().Int("tenure", 0, "Tenure in months")
	cmd.Flags().String("income", "", "Monthly income, selects the rate tier")
	cmd.Flags().Float64("rate", 0, "Annual rate in percent")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("tenure")
	cmd.MarkFlagsMutuallyExclusive("income", "rate")
	cmd.MarkFlagsOneRequired("income", "rate")
	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	rawAmount, _ := cmd.Flags().GetString("amount")
	tenure, _ := cmd.Flags().GetInt("tenure")

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("invalid --amount %q: %w", rawAmount, err)
	}

	var q emi.Quote
	if cmd.Flags().Changed("rate") {
		rate, _ := cmd.Flags().GetFloat64("rate")
		q, err = emi.NewQuote(amount, rate, tenure)
	} else {
		rawIncome, _ := cmd.Flags().GetString("income")
		income, perr := decimal.NewFromString(rawIncome)
		if perr != nil {
			return fmt.Errorf("invalid --income %q: %w", rawIncome, perr)
		}
		q, err = emi.QuoteForIncome(amount, income, tenure)
	}
	if errors.Is(err, emi.ErrInvalidInput) {
		return fmt.Errorf("cannot quote: %w", err)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "amount\t%s\n", q.Principal.StringFixed(2))
	fmt.Fprintf(w, "rate\t%s%%\n", q.AnnualRate.String())
	fmt.Fprintf(w, "months\t%d\n", q.Months)
	fmt.Fprintf(w, "monthly_emi\t%s\n", q.MonthlyEMI.StringFixed(2))
	fmt.Fprintf(w, "total_payment\t%s\n", q.TotalPayment.StringFixed(2))
	fmt.Fprintf(w, "total_interest\t%s\n", q.TotalInterest.StringFixed(2))
	return w.Flush()
}
