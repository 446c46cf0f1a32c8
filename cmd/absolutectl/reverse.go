package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"absolute/internal/app"
	"absolute/pkg/absolute"
	"absolute/pkg/sites"
)

func reverseCommand(open opener) *cobra.Command {
	var siteID string
	cmd := &cobra.Command{
		Use:   "reverse NAME [ARG...|KEY=VALUE...]",
		Short: "Print the site URL of a named route",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			u, err := reverseSiteURL(cmd, a, siteID, args[0], args[1:])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), u)
			return err
		},
	}
	cmd.Flags().StringVar(&siteID, "site", "", "Site id to use instead of the current site")
	return cmd
}

func reverseSiteURL(cmd *cobra.Command, a *app.App, siteID, name string, rest []string) (string, error) {
	var (
		args   []any
		kwargs map[string]any
	)
	for _, r := range rest {
		if k, v, ok := strings.Cut(r, "="); ok {
			if kwargs == nil {
				kwargs = map[string]any{}
			}
			kwargs[k] = v
			continue
		}
		args = append(args, r)
	}
	path, err := a.Router.Reverse(name, args, kwargs)
	if err != nil {
		return "", err
	}

	var site sites.Site
	if siteID != "" {
		site, err = a.Provider.SiteByID(cmd.Context(), siteID)
	} else {
		site, err = a.Sites.Current(cmd.Context(), "")
	}
	if err != nil {
		return "", err
	}
	return absolute.SiteURL(absolute.SiteProtocol(a.Settings, nil), site.Domain, path), nil
}
