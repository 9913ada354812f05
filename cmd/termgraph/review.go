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
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/review"
	"github.com/urfave/cli/v2"
)

func reviewCommand() *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: "Work the term candidate review queue",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List candidates, most frequent first",
				Action: reviewListAction,
				Flags: append(scopeFlags(),
					&cli.StringFlag{
						Name:  "status",
						Usage: "pending, approved or rejected",
						Value: string(core.CandidateStatusPending),
					},
					&cli.IntFlag{Name: "min-frequency", Usage: "Hide candidates seen fewer times"},
					&cli.IntFlag{Name: "limit", Usage: "Page size", Value: review.DefaultQueueLimit},
					&cli.IntFlag{Name: "offset", Usage: "Page offset"},
				),
			},
			{
				Name:   "approve",
				Usage:  "Approve a candidate into the glossary",
				Action: reviewApproveAction,
				Flags: append(decisionFlags(),
					&cli.StringFlag{
						Name:     "definition",
						Usage:    "Approved definition text",
						Required: true,
					},
					&cli.StringFlag{Name: "key", Usage: "Concept key (default: derived from the term)"},
					&cli.StringFlag{Name: "label", Usage: "Concept label"},
					&cli.StringFlag{Name: "alias", Usage: "Alias text (default: the mined term)"},
					&cli.StringFlag{Name: "criticality", Usage: "normal or critical"},
					&cli.Float64Flag{Name: "confidence", Usage: "Definition confidence in [0, 1]"},
					&cli.TimestampFlag{Name: "valid-from", Usage: "Start of validity", Layout: time.RFC3339},
					&cli.TimestampFlag{Name: "valid-to", Usage: "End of validity", Layout: time.RFC3339},
				),
			},
			{
				Name:   "reject",
				Usage:  "Reject a candidate",
				Action: reviewRejectAction,
				Flags:  decisionFlags(),
			},
		},
	}
}

// decisionFlags are shared by approve and reject.
func decisionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{
			Name:     "id",
			Usage:    "Candidate ID",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "reviewer",
			Usage: "Reviewer identifier recorded in the audit trail",
		},
		&cli.StringFlag{
			Name:  "notes",
			Usage: "Review notes",
		},
	}
}

func reviewListAction(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := db.NewReviewService()
	if err != nil {
		return err
	}
	candidates, err := svc.ListQueue(c.Context, review.Filter{
		Status:       core.CandidateStatus(c.String("status")),
		Scope:        scopeFromFlags(c),
		MinFrequency: c.Int("min-frequency"),
		Limit:        c.Int("limit"),
		Offset:       c.Int("offset"),
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTERM\tFREQ\tCONF\tSCOPE\tCONTEXT")
	for _, cand := range candidates {
		context := ""
		if len(cand.Contexts) > 0 {
			context = truncate(cand.Contexts[len(cand.Contexts)-1], 60)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%s\t%s\n",
			cand.Id, cand.TermOriginal, cand.Frequency, cand.Confidence, cand.Scope, context)
	}
	return w.Flush()
}

func reviewApproveAction(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := db.NewReviewService()
	if err != nil {
		return err
	}

	input := review.ApproveInput{
		ConceptKey:  c.String("key"),
		Label:       c.String("label"),
		Definition:  c.String("definition"),
		Criticality: core.Criticality(c.String("criticality")),
		Alias:       c.String("alias"),
		ReviewerId:  c.String("reviewer"),
		Notes:       c.String("notes"),
	}
	if c.IsSet("confidence") {
		v := c.Float64("confidence")
		input.Confidence = &v
	}
	if t := c.Timestamp("valid-from"); t != nil {
		input.ValidFrom = *t
	}
	if t := c.Timestamp("valid-to"); t != nil {
		input.ValidTo = *t
	}

	res, err := svc.Approve(c.Context, core.ID(c.Uint64("id")), input)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "approved %q as %s version %d\n",
		res.Candidate.TermOriginal, res.Concept.Key, res.Definition.Version)
	return nil
}

func reviewRejectAction(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := db.NewReviewService()
	if err != nil {
		return err
	}
	if _, err := svc.Reject(c.Context, core.ID(c.Uint64("id")), review.RejectInput{
		ReviewerId: c.String("reviewer"),
		Notes:      c.String("notes"),
	}); err != nil {
		return fmt.Errorf("rejection failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "rejected candidate %d\n", c.Uint64("id"))
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
