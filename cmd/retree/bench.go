package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/el"
	"github.com/retree-dev/retree/pkg/engine"
	"github.com/retree-dev/retree/pkg/host/memhost"
	"github.com/retree-dev/retree/pkg/reconcile"
)

type benchList struct{}

func (benchList) Render(rc desc.RenderContext) any {
	keys, _ := rc.Props["keys"].([]string)
	items := make([]*desc.Desc, 0, len(keys))
	for _, k := range keys {
		items = append(items, el.E("li", el.Key(k), el.Text("item "+k)))
	}
	return el.E("ul", items)
}

func benchCmd() *cobra.Command {
	var (
		rows   int
		cycles int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure diff and reconciliation throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(seed))

			keys := make([]string, rows)
			for i := range keys {
				keys[i] = fmt.Sprintf("k%d", i)
			}

			eng := engine.New()
			if err := eng.Register("bench-list", func() desc.Component { return benchList{} }); err != nil {
				return err
			}
			adapter := memhost.New()
			tree, err := eng.Mount(cmd.Context(),
				el.C("bench-list", map[string]any{"keys": append([]string(nil), keys...)}),
				adapter, adapter.Root())
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < cycles; i++ {
				shuffled := append([]string(nil), keys...)
				rng.Shuffle(len(shuffled), func(a, b int) {
					shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
				})
				if err := tree.Update(map[string]any{"keys": shuffled}); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)

			fmt.Printf("updates:  %d cycles x %d rows\n", cycles, rows)
			fmt.Printf("total:    %v\n", elapsed)
			fmt.Printf("per op:   %v\n", elapsed/time.Duration(cycles))
			fmt.Printf("host ops: %d\n", len(adapter.Ops))

			benchMoves(rng, rows, cycles)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 1000, "list rows per cycle")
	cmd.Flags().IntVar(&cycles, "cycles", 100, "update cycles to run")
	cmd.Flags().Int64Var(&seed, "seed", 1, "shuffle seed")
	return cmd
}

// benchMoves measures the raw key reconciler in isolation.
func benchMoves(rng *rand.Rand, rows, cycles int) {
	source := make([]string, rows)
	for i := range source {
		source[i] = fmt.Sprintf("k%d", i)
	}

	var moves int
	start := time.Now()
	for i := 0; i < cycles; i++ {
		target := append([]string(nil), source...)
		rng.Shuffle(len(target), func(a, b int) {
			target[a], target[b] = target[b], target[a]
		})
		moves += len(reconcile.CalculateMoves(source, target, ""))
	}
	elapsed := time.Since(start)

	fmt.Printf("reconcile: %v per permutation, %.1f moves avg\n",
		elapsed/time.Duration(cycles), float64(moves)/float64(cycles))
}
