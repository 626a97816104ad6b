package graph

import (
	"fmt"
	"os"
	"sort"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	rerrors "repolens/internal/errors"
	"repolens/internal/scanner"
)

// LoadReferences reads a SCIP index and returns one reference edge for each
// document that uses a symbol defined in another document of snap. Local
// symbols and documents outside the snapshot are ignored.
func LoadReferences(path string, snap *scanner.Snapshot) ([]Edge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rerrors.New(rerrors.ScanIOError,
				fmt.Sprintf("SCIP index not found at %s", path), err).WithPath(path)
		}
		return nil, rerrors.New(rerrors.ScanIOError,
			fmt.Sprintf("Failed to read SCIP index from %s", path), err).WithPath(path)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, rerrors.New(rerrors.ParseFailure,
			fmt.Sprintf("Failed to parse SCIP index from %s", path), err).WithPath(path)
	}
	return referenceEdges(&index, snap), nil
}

func referenceEdges(index *scippb.Index, snap *scanner.Snapshot) []Edge {
	definedIn := make(map[string]string)
	for _, doc := range index.Documents {
		if !snap.Has(doc.RelativePath) {
			continue
		}
		for _, occ := range doc.Occurrences {
			if isDefinition(occ) && !isLocal(occ.Symbol) {
				if _, seen := definedIn[occ.Symbol]; !seen {
					definedIn[occ.Symbol] = doc.RelativePath
				}
			}
		}
	}

	var edges []Edge
	for _, doc := range index.Documents {
		if !snap.Has(doc.RelativePath) {
			continue
		}
		targets := make(map[string]bool)
		for _, occ := range doc.Occurrences {
			if isDefinition(occ) || isLocal(occ.Symbol) {
				continue
			}
			if def, ok := definedIn[occ.Symbol]; ok && def != doc.RelativePath {
				targets[def] = true
			}
		}
		sorted := make([]string, 0, len(targets))
		for t := range targets {
			sorted = append(sorted, t)
		}
		sort.Strings(sorted)
		for _, t := range sorted {
			edges = append(edges, Edge{From: doc.RelativePath, To: t, Weight: referenceWeight, Kind: KindReference})
		}
	}
	return edges
}

func isDefinition(occ *scippb.Occurrence) bool {
	return occ.SymbolRoles&int32(scippb.SymbolRole_Definition) != 0
}

func isLocal(symbol string) bool {
	return symbol == "" || strings.HasPrefix(symbol, "local ")
}
