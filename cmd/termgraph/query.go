// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/termgraph/queryflow"
	"github.com/poiesic/termgraph/resolve"
	"github.com/urfave/cli/v2"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Interpret a query and print its expanded form",
		ArgsUsage: "<query text>",
		Action:    queryAction,
		Flags: append(scopeFlags(),
			&cli.StringFlag{
				Name:  "at",
				Usage: "Evaluate validity windows at this RFC3339 instant (default: now)",
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "Ambiguity policy: strict, show_both or ask (default: config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the full result as JSON",
			},
		),
	}
}

func queryAction(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return errors.New("query text is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var result *queryflow.Result
	if db.Settings().Features.KillSwitch {
		result = queryflow.Bypass(text)
	} else {
		flow, err := db.NewQueryFlow()
		if err != nil {
			return err
		}
		req := db.QueryRequest(text)
		req.Scope = scopeFromFlags(c)
		req.EffectiveAt = queryflow.ParseEffectiveAt(c.String("at"), time.Now())
		if p := c.String("policy"); p != "" {
			req.AmbiguityPolicy = resolve.ParsePolicy(p)
		}
		result, err = flow.Run(c.Context, req)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
	}

	out := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.StrictFailureMessage != nil {
		fmt.Fprintln(out, *result.StrictFailureMessage)
		return nil
	}
	fmt.Fprintln(out, result.ExpandedQuery)
	for _, a := range result.Ambiguities {
		fmt.Fprintf(out, "\nambiguous: %s\n", a.Reason)
	}
	if len(result.UnresolvedTerms) > 0 {
		fmt.Fprintf(c.App.ErrWriter, "unresolved terms: %s\n", strings.Join(result.UnresolvedTerms, ", "))
	}
	return nil
}
