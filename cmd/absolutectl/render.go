package main

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"absolute/internal/app"
	"absolute/pkg/absolute"
	"absolute/pkg/tags"
)

type opener func(cmd *cobra.Command) (*app.App, error)

func renderCommand(open opener) *cobra.Command {
	var (
		host   string
		secure bool
		vars   []string
	)
	cmd := &cobra.Command{
		Use:   "render TEMPLATE",
		Short: "Render a template file with the url, absolute and site tags",
		Long: "Render a template file. Without --host there is no request, as when\n" +
			"rendering e-mails or feeds from a job: site URLs use the configured\n" +
			"site and the absolute tag is unavailable.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return renderFile(cmd, a, args[0], host, secure, vars)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Render as if requested from this host")
	cmd.Flags().BoolVar(&secure, "secure", false, "Treat the synthetic request as https")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Context variable as key=value (repeatable)")
	return cmd
}

func renderFile(cmd *cobra.Command, a *app.App, path, host string, secure bool, vars []string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tpl, err := a.Tags.Compile(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	c := tags.NewContext(nil, nil)
	if host != "" {
		r, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, "http://"+host+"/", nil)
		if err != nil {
			return err
		}
		if secure {
			r.TLS = &tls.ConnectionState{}
		}
		req := absolute.FromHTTP(r, false)
		roots, err := absolute.ContextVars(cmd.Context(), req, a.Settings, a.Sites)
		if err != nil {
			return err
		}
		c = tags.NewContext(req, nil).Update(roots)
	}
	for _, kv := range vars {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--var %q: want key=value", kv)
		}
		c[k] = v
	}
	return a.Tags.ExecuteWriter(tpl, c, cmd.OutOrStdout())
}
