package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

type Providers struct {
	Providers string   `arg:"" name:"config" help:"Yaml file listing the relay providers."`
	Deny      []string `option:"" name:"deny" help:"Provider kinds to keep configured but inert."`
}

func (r *Providers) Run(kongCtx *CLIContext) error {
	doc, err := loadProviderConfig(r.Providers)
	if err != nil {
		return err
	}
	denylist, err := parseDenylist(r.Deny)
	if err != nil {
		return err
	}
	// listing does not need a live rpc connection
	denylist = append(denylist, swqos.KindDefault)
	registry, err := swqos.BuildRegistry(doc.Providers, nil, denylist)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tSTATE\tMIN TIP (SOL)")
	for _, p := range registry.All() {
		state := "enabled"
		if p.Disabled() {
			state = "inert"
		}
		floor := "-"
		if f, present := swqos.MinTip[p.Identity()]; present {
			floor = f.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Identity(), state, floor)
	}
	return w.Flush()
}
