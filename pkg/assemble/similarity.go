package assemble

import "webcrawl/pkg/models"

// Edge connects two pages whose outbound link sets overlap, or whose
// content fingerprints are identical (a duplicate pair).
type Edge struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Weight    float64 `json:"weight"` // Jaccard similarity of link sets
	Duplicate bool    `json:"duplicate"`
}

// SimilarityNetwork builds the page-similarity graph: an edge for every
// page pair whose Jaccard link overlap reaches threshold, plus an edge
// for every pair sharing a content fingerprint. Pairs are emitted in
// page order, source before target.
func SimilarityNetwork(pages []models.VisitedPage, threshold float64) []Edge {
	linkSets := make([]map[string]bool, len(pages))
	for i := range pages {
		set := make(map[string]bool, len(pages[i].Links))
		for _, link := range pages[i].Links {
			set[link] = true
		}
		linkSets[i] = set
	}

	var edges []Edge
	for i := 0; i < len(pages); i++ {
		for j := i + 1; j < len(pages); j++ {
			duplicate := pages[i].Fingerprint != "" && pages[i].Fingerprint == pages[j].Fingerprint
			weight := jaccard(linkSets[i], linkSets[j])
			if !duplicate && weight < threshold {
				continue
			}
			edges = append(edges, Edge{
				Source:    pages[i].URL,
				Target:    pages[j].URL,
				Weight:    weight,
				Duplicate: duplicate,
			})
		}
	}
	return edges
}

// jaccard computes |a∩b| / |a∪b|; two empty sets score zero.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for link := range a {
		if b[link] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
