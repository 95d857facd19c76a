//go:build cgo

package main

import "github.com/dusk-indust/kinship/internal/graph"

func init() {
	openKuzu = func(path string) (graph.Store, error) {
		return graph.NewKuzuFileStore(path)
	}
}
