package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/output"
)

func newRawCmd(a *app) *cobra.Command {
	var (
		params  []string
		headers []string
		data    string
		color   string
		verbose bool
		curl    bool
	)
	cmd := &cobra.Command{
		Use:   "raw <METHOD> <endpoint>",
		Short: "Send a request to any API endpoint and print the reply",
		Example: "  bizdesk raw GET /companies --param page=1 --param pageSize=5\n" +
			"  bizdesk raw PUT /companies/7 --data '{\"remarks\":\"vip\"}'",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &api.Request{
				Method:       strings.ToUpper(args[0]),
				Endpoint:     args[1],
				ResponseType: api.ResponseText,
				Headers:      map[string]string{},
			}
			if len(params) > 0 {
				kv := make([]any, 0, 2*len(params))
				for _, p := range params {
					k, v, ok := strings.Cut(p, "=")
					if !ok {
						return fmt.Errorf("invalid --param %q, want key=value", p)
					}
					kv = append(kv, k, v)
				}
				req.Params = api.P(kv...)
			}
			for _, h := range headers {
				k, v, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid --header %q, want Name: value", h)
				}
				req.Headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return errors.New("--data is not valid JSON")
				}
				req.Body = json.RawMessage(data)
			}

			if curl {
				line, err := a.client.Curl(req)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, line)
				return nil
			}

			useColor, err := wantColor(color)
			if err != nil {
				return err
			}
			resp, err := a.client.Do(cmd.Context(), req)
			if err != nil {
				var apiErr *api.Error
				if errors.As(err, &apiErr) && apiErr.Data != nil {
					if body, mErr := json.Marshal(apiErr.Data); mErr == nil {
						_ = output.Body(a.stdout, body, "application/json", useColor)
					}
				}
				return err
			}
			if verbose {
				fmt.Fprintf(a.stderr, "%s (%s)\n", resp.Status, output.Duration(resp.Duration))
				for k, vs := range resp.Headers {
					fmt.Fprintf(a.stderr, "%s: %s\n", k, strings.Join(vs, ", "))
				}
			}
			return output.Body(a.stdout, resp.Raw, resp.Headers.Get("Content-Type"), useColor)
		},
	}
	fl := cmd.Flags()
	fl.StringArrayVarP(&params, "param", "p", nil, "query parameter key=value, repeatable")
	fl.StringArrayVarP(&headers, "header", "H", nil, "request header 'Name: value', repeatable")
	fl.StringVarP(&data, "data", "d", "", "JSON request body")
	fl.StringVar(&color, "color", "auto", "highlight the body: auto, always or never")
	fl.BoolVarP(&verbose, "verbose", "v", false, "print status and headers to stderr")
	fl.BoolVar(&curl, "curl", false, "print the equivalent curl command instead of sending")
	return cmd
}

func wantColor(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), nil
	}
	return false, fmt.Errorf("invalid --color %q", mode)
}
