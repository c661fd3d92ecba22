package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/MrJJimenez/jobfeed/internal/config"
	"github.com/MrJJimenez/jobfeed/internal/models"
	"github.com/MrJJimenez/jobfeed/internal/network"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Fetch the python.org feed through each configured proxy."`
}

type ProxyCheckCmd struct {
	Target  string `help:"Target URL. Defaults to the configured feed URL."`
	Timeout int    `help:"Timeout in seconds." default:"15"`
	Proxies string `help:"Comma-separated proxy URLs. Defaults to JOBFEED_PROXIES or proxies.txt."`
	JSON    bool   `help:"Print results as JSON."`
}

type ProxyCheckResult struct {
	Proxy     string `json:"proxy"`
	Status    string `json:"status"`
	Bytes     int    `json:"bytes"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(p.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	target := p.Target
	if target == "" {
		target = ctx.Config.FeedURL
	}

	results := make([]ProxyCheckResult, 0, len(proxies))
	for _, proxy := range proxies {
		results = append(results, p.check(ctx, proxy, target))
	}
	return writeProxyResults(ctx, results, p.JSON)
}

func (p *ProxyCheckCmd) check(ctx *Context, proxy string, target string) ProxyCheckResult {
	result := ProxyCheckResult{Proxy: proxy, Status: "error"}

	timeout := time.Duration(p.Timeout) * time.Second
	client, err := network.NewClient(models.FetchConfig{
		Proxies:   []string{proxy},
		Timeout:   timeout,
		UserAgent: ctx.Config.UserAgent,
	}, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	body, err := client.Fetch(reqCtx, target)
	result.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		ctx.Logger.Debug().Str("proxy", proxy).Err(err).Msg("proxy check failed")
		return result
	}
	result.Status = "ok"
	result.Bytes = len(body)
	return result
}

func writeProxyResults(ctx *Context, results []ProxyCheckResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "proxy\tstatus\tbytes\tlatency_ms\terror")
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", res.Proxy, res.Status, res.Bytes, res.LatencyMS, res.Error)
	}
	return tw.Flush()
}
