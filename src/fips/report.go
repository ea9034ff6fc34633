package fips

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	MonoBit        = "monobit"
	LongestRun     = "longest_run"
	Poker          = "poker"
	RunLengthDistr = "runs"
)

type Result struct {
	Name      string  `json:"name"`
	Pass      bool    `json:"pass"`
	Statistic float64 `json:"statistic"`
	Detail    string  `json:"detail"`
}

type Report struct {
	Results []Result `json:"results"`
	Pass    bool     `json:"pass"`
	// PokerPValue is the upper-tail probability of the poker statistic under
	// a chi-square distribution with 2^M-1 degrees of freedom.
	PokerPValue float64 `json:"poker_p_value"`
}

// Run evaluates the four tests concurrently over b. The sequence is only
// read, so the tests share it without locking.
func Run(ctx context.Context, b *Bits) (*Report, error) {
	results := make([]Result, 4)
	var pokerX float64

	g, ctx := errgroup.WithContext(ctx)
	tests := []func() Result{
		func() Result {
			n := onesCount(b)
			return Result{
				Name:      MonoBit,
				Pass:      monoBitLower <= n && n <= monoBitUpper,
				Statistic: float64(n),
				Detail:    fmt.Sprintf("ones=%d bounds=[%d,%d]", n, monoBitLower, monoBitUpper),
			}
		},
		func() Result {
			n := longestRun(b)
			return Result{
				Name:      LongestRun,
				Pass:      n <= maxRunLen,
				Statistic: float64(n),
				Detail:    fmt.Sprintf("longest=%d max=%d", n, maxRunLen),
			}
		},
		func() Result {
			pokerX = pokerStatistic(b, pokerM)
			return Result{
				Name:      Poker,
				Pass:      pokerLower <= pokerX && pokerX <= pokerUpper,
				Statistic: pokerX,
				Detail:    fmt.Sprintf("x=%.4f bounds=[%.2f,%.1f]", pokerX, pokerLower, pokerUpper),
			}
		},
		func() Result {
			counts := runLengthCounts(b)
			bad := 0
			for i, n := range counts {
				if n < runLowerBounds[i] || n > runUpperBounds[i] {
					bad++
				}
			}
			return Result{
				Name:      RunLengthDistr,
				Pass:      bad == 0,
				Statistic: float64(bad),
				Detail:    fmt.Sprintf("buckets=%v", counts),
			}
		},
	}

	for i, test := range tests {
		i, test := i, test
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = test()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fips: running battery: %w", err)
	}

	rep := &Report{Results: results, Pass: true}
	for _, r := range results {
		rep.Pass = rep.Pass && r.Pass
	}
	rep.PokerPValue = distuv.ChiSquared{K: float64(1<<pokerM - 1)}.Survival(pokerX)
	return rep, nil
}

// Failed returns the names of the tests that did not pass.
func (r *Report) Failed() []string {
	var names []string
	for _, res := range r.Results {
		if !res.Pass {
			names = append(names, res.Name)
		}
	}
	return names
}

func (r *Report) String() string {
	var sb strings.Builder
	for _, res := range r.Results {
		verdict := "FAIL"
		if res.Pass {
			verdict = "PASS"
		}
		fmt.Fprintf(&sb, "%s: %s (%s)\n", res.Name, verdict, res.Detail)
	}
	fmt.Fprintf(&sb, "poker p-value: %.4f", r.PokerPValue)
	return sb.String()
}
