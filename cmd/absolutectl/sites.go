package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/jmespath/go-jmespath"
	"github.com/spf13/cobra"

	"absolute/pkg/sites"
)

func sitesCommand(open opener) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List registered sites",
		Long: "List registered sites. With --query the list is filtered through a\n" +
			"JMESPath expression over [{id, domain, name}] and printed as JSON.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			all, err := a.Provider.ListSites(cmd.Context())
			if err != nil {
				return err
			}
			if query != "" {
				return querySites(cmd, all, query)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDOMAIN\tNAME")
			for _, s := range all {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Domain, s.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "JMESPath expression applied to the site list")
	return cmd
}

func querySites(cmd *cobra.Command, all []sites.Site, query string) error {
	q, err := jmespath.Compile(query)
	if err != nil {
		return fmt.Errorf("--query: %w", err)
	}
	// Round-trip through JSON so queries see the json keys.
	raw, err := json.Marshal(all)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	out, err := q.Search(doc)
	if err != nil {
		return fmt.Errorf("--query: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
