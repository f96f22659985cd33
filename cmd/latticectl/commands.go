package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/wascc/lattice-client/client"
	"github.com/wascc/lattice-client/protocol"
)

func listEntities(ctx context.Context, c *client.Client, cfg *CLIConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Entity)) {
	case "hosts":
		return renderHosts(ctx, c, cfg.JSON)
	case "workloads":
		return renderWorkloads(ctx, c, cfg.JSON)
	case "links", "bindings":
		return renderLinks(ctx, c, cfg.JSON)
	default:
		return fmt.Errorf("unknown entity type %q, valid types are: hosts, workloads, links", cfg.Entity)
	}
}

func renderHosts(ctx context.Context, c *client.Client, asJSON bool) error {
	snapshot, err := c.ProbeAll(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(snapshot.Hosts)
	}
	for _, host := range snapshot.Hosts {
		labels := make([]string, 0, len(host.Labels))
		for k := range host.Labels {
			labels = append(labels, k)
		}
		sort.Strings(labels)
		fmt.Printf("[%s] Uptime %ds, Labels: %s\n",
			host.ID, host.UptimeMS/1000, strings.Join(labels, ","))
	}
	return nil
}

func renderWorkloads(ctx context.Context, c *client.Client, asJSON bool) error {
	snapshot, err := c.QueryWorkloads(ctx, protocol.AllHosts())
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(snapshot.Hosts)
	}
	for _, host := range snapshot.Hosts {
		fmt.Printf("\nHost %s:\n", host.ID)
		for _, w := range host.Workloads {
			fmt.Printf("\t%s - %s (rev %d)\n", w.ID, w.Kind, w.Revision)
		}
	}
	return nil
}

func renderLinks(ctx context.Context, c *client.Client, asJSON bool) error {
	links, err := c.QueryLinks(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(links)
	}

	hosts := make([]string, 0, len(links))
	for host := range links {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	for _, host := range hosts {
		fmt.Printf("\nHost %s:\n", host)
		for _, link := range links[host] {
			name := link.BindingName
			if name == "" {
				name = "default"
			}
			fmt.Printf("\t%s -> %s (%s, binding %q)\n",
				link.WorkloadID, link.ProviderID, link.ContractID, name)
		}
	}
	return nil
}

func watchEvents(ctx context.Context, c *client.Client, cfg *CLIConfig) error {
	if !cfg.JSON {
		fmt.Println("Watching lattice events, Ctrl+C to abort...")
	}

	watch, err := c.WatchEvents(ctx)
	if err != nil {
		return err
	}
	for event := range watch {
		if cfg.JSON {
			if err := printJSON(event); err != nil {
				return err
			}
		} else {
			fmt.Println(event)
		}
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
